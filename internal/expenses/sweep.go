package expenses

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/homehub/internal/model"
	"github.com/Veraticus/homehub/internal/recurrence"
	"github.com/Veraticus/homehub/internal/service"
)

// RuleSweep reports what one rule generated during a sweep.
type RuleSweep struct {
	Checkpoint *time.Time
	Title      string
	RuleID     int64
	Created    int
	Skipped    int
}

// SweepReport summarizes a whole sweep.
type SweepReport struct {
	Rules   []RuleSweep
	Created int
}

// SweepObserver is called after each rule is swept, with the number of rules
// done so far and the total.
type SweepObserver func(done, total int, rule RuleSweep)

// MaterializeUpTo writes the ledger rows every rule owes up to and including
// today. Repeated calls never duplicate a (rule, date) row.
func (s *Service) MaterializeUpTo(ctx context.Context, today time.Time) (*SweepReport, error) {
	return s.Sweep(ctx, today, nil)
}

// Sweep is MaterializeUpTo with a progress observer. The whole sweep runs in
// one transaction.
func (s *Service) Sweep(ctx context.Context, today time.Time, observe SweepObserver) (*SweepReport, error) {
	today = recurrence.Day(today)

	var report *SweepReport
	err := s.store.WithTx(ctx, func(tx service.Store) error {
		report = &SweepReport{}
		rules, err := tx.ListExpenseRules(ctx)
		if err != nil {
			return fmt.Errorf("failed to list expense rules: %w", err)
		}
		for i := range rules {
			result, err := MaterializeRule(ctx, tx, &rules[i], today)
			if err != nil {
				return err
			}
			report.Rules = append(report.Rules, result)
			report.Created += result.Created
			if observe != nil {
				observe(i+1, len(rules), result)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// MaterializeRule generates one rule's rows from its checkpoint through today
// and advances the checkpoint. Rows that already exist are skipped.
func MaterializeRule(ctx context.Context, tx service.ExpenseStore, rule *model.ExpenseRule, today time.Time) (RuleSweep, error) {
	result := RuleSweep{RuleID: rule.ID, Title: rule.Title}
	rec := rule.Recurrence()
	today = recurrence.Day(today)

	var last *time.Time
	for cursor := rec.Resume(rule.LastGeneratedDate); !cursor.After(today) && rec.Active(cursor); {
		entry := rule.Entry(cursor)
		inserted, err := tx.InsertGeneratedEntry(ctx, &entry)
		if err != nil {
			return result, fmt.Errorf("rule %d on %s: %w", rule.ID, model.FormatDate(cursor), err)
		}
		if inserted {
			result.Created++
		} else {
			result.Skipped++
		}

		generated := cursor
		last = &generated

		next := rec.Advance(cursor)
		if !next.After(cursor) {
			break
		}
		cursor = next
	}

	if last != nil {
		if err := tx.SetExpenseRuleCheckpoint(ctx, rule.ID, *last); err != nil {
			return result, err
		}
		rule.LastGeneratedDate = last
	}
	result.Checkpoint = rule.LastGeneratedDate

	if result.Created > 0 {
		slog.Info("materialized expense entries", "rule_id", rule.ID, "created", result.Created)
	}
	return result, nil
}

// CheckpointLabel renders the rule's checkpoint after the sweep.
func (r RuleSweep) CheckpointLabel() string {
	if r.Checkpoint == nil {
		return "never"
	}
	return model.FormatDate(*r.Checkpoint)
}
