package reminders

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/homehub/internal/common"
	"github.com/Veraticus/homehub/internal/model"
	"github.com/Veraticus/homehub/internal/recurrence"
	"github.com/Veraticus/homehub/internal/sanitize"
	"github.com/Veraticus/homehub/internal/service"
)

// CreateInput is a request to create a reminder or, when Recurring is set, a
// reminder rule anchored at Date.
type CreateInput struct {
	Recurring   *RecurrenceInput
	RecurringID *int64
	Title       string
	Date        string
	Description string
	Creator     string
	Time        string
	Category    string
	Color       string
}

// RecurrenceInput describes the schedule of a new rule. Unit takes precedence;
// Frequency is the legacy daily/weekly/monthly form.
type RecurrenceInput struct {
	Unit      string
	Frequency string
	EndDate   string
	Interval  int
}

// CreateResult holds whichever record Create produced.
type CreateResult struct {
	Reminder *model.Reminder
	Rule     *model.ReminderRule
}

// Patch lists the reminder fields to change. Nil fields are left alone.
type Patch struct {
	Title       *string
	Description *string
	Date        *string
	Time        *string
	Category    *string
	Color       *string
}

// RulePatch lists the rule fields to change. Nil fields are left alone.
type RulePatch struct {
	Title       *string
	Description *string
	Time        *string
	Category    *string
	Color       *string
	Unit        *string
	StartDate   *string
	EndDate     *string
	Interval    *int
}

// DeleteResult reports a bulk delete.
type DeleteResult struct {
	Dates   []string `json:"dates"`
	Deleted int      `json:"deleted"`
}

// Create stores a single reminder or a reminder rule.
func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	title := sanitize.Text(in.Title)
	if title == "" {
		return nil, common.Invalid("title", "is required")
	}
	date, err := model.ParseDate(in.Date)
	if err != nil {
		return nil, common.Invalid("date", "must be YYYY-MM-DD")
	}
	clock, _ := model.ParseClock(in.Time)

	if in.Recurring != nil {
		rule, err := newRule(in.Recurring, date)
		if err != nil {
			return nil, err
		}
		rule.Title = title
		rule.Description = sanitize.HTML(in.Description)
		rule.Creator = sanitize.Text(in.Creator)
		rule.Time = clock
		rule.Category = sanitize.Text(in.Category)
		rule.Color = sanitize.Text(in.Color)

		err = s.store.WithTx(ctx, func(tx service.Store) error {
			return tx.CreateReminderRule(ctx, rule)
		})
		if err != nil {
			return nil, err
		}
		return &CreateResult{Rule: rule}, nil
	}

	reminder := &model.Reminder{
		Date:        date,
		Title:       title,
		Description: sanitize.HTML(in.Description),
		Creator:     sanitize.Text(in.Creator),
		Time:        clock,
		Category:    sanitize.Text(in.Category),
		Color:       sanitize.Text(in.Color),
		RecurringID: in.RecurringID,
	}
	err = s.store.WithTx(ctx, func(tx service.Store) error {
		if reminder.RecurringID != nil {
			if _, err := tx.GetReminderRule(ctx, *reminder.RecurringID); err != nil {
				return err
			}
		}
		return tx.CreateReminder(ctx, reminder)
	})
	if err != nil {
		return nil, err
	}
	return &CreateResult{Reminder: reminder}, nil
}

func newRule(in *RecurrenceInput, anchor time.Time) (*model.ReminderRule, error) {
	unit, err := resolveUnit(in.Unit, in.Frequency)
	if err != nil {
		return nil, err
	}
	interval := in.Interval
	if interval < 1 {
		interval = 1
	}

	rule := &model.ReminderRule{StartDate: anchor, Unit: unit, Interval: interval}
	if strings.TrimSpace(in.EndDate) != "" {
		end, err := model.ParseDate(in.EndDate)
		if err != nil {
			return nil, common.Invalid("end_date", "must be YYYY-MM-DD")
		}
		if end.Before(anchor) {
			return nil, common.Invalid("end_date", "must not precede the start date")
		}
		rule.EndDate = &end
	}
	return rule, nil
}

// resolveUnit picks the rule unit from an explicit unit or a legacy
// frequency. With neither, the rule is daily.
func resolveUnit(rawUnit, frequency string) (recurrence.Unit, error) {
	if strings.TrimSpace(rawUnit) != "" {
		unit, ok := recurrence.ParseUnit(rawUnit)
		if !ok {
			return "", common.Invalid("unit", "must be one of day, week, month, year")
		}
		return unit, nil
	}
	if strings.TrimSpace(frequency) == "" {
		return recurrence.UnitDay, nil
	}
	unit, ok := recurrence.UnitFromFrequency(frequency)
	if !ok {
		return "", common.Invalid("frequency", "must be one of daily, weekly, monthly")
	}
	return unit, nil
}

// Update applies a partial patch to a persisted reminder on behalf of user.
// An invalid date is ignored; an invalid time clears the time.
func (s *Service) Update(ctx context.Context, id int64, user string, patch Patch) (*model.Reminder, error) {
	var updated *model.Reminder
	err := s.store.WithTx(ctx, func(tx service.Store) error {
		r, err := tx.GetReminder(ctx, id)
		if err != nil {
			return err
		}
		if err := s.policy.Authorize(sanitize.Text(user), r.Creator, "update reminder"); err != nil {
			return err
		}

		if patch.Title != nil {
			if title := sanitize.Text(*patch.Title); title != "" {
				r.Title = title
			}
		}
		if patch.Description != nil {
			r.Description = sanitize.HTML(*patch.Description)
		}
		if patch.Date != nil {
			if d, err := model.ParseDate(*patch.Date); err == nil {
				r.Date = d
			}
		}
		if patch.Time != nil {
			r.Time, _ = model.ParseClock(*patch.Time)
		}
		if patch.Category != nil {
			r.Category = sanitize.Text(*patch.Category)
		}
		if patch.Color != nil {
			r.Color = sanitize.Text(*patch.Color)
		}

		if err := tx.UpdateReminder(ctx, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateRule applies a partial patch to a reminder rule on behalf of user.
// Edits apply to every future window; nothing was persisted for past ones.
func (s *Service) UpdateRule(ctx context.Context, id int64, user string, patch RulePatch) (*model.ReminderRule, error) {
	var updated *model.ReminderRule
	err := s.store.WithTx(ctx, func(tx service.Store) error {
		rule, err := tx.GetReminderRule(ctx, id)
		if err != nil {
			return err
		}
		if err := s.policy.Authorize(sanitize.Text(user), rule.Creator, "update reminder rule"); err != nil {
			return err
		}
		if err := applyRulePatch(rule, patch); err != nil {
			return err
		}
		if err := tx.UpdateReminderRule(ctx, rule); err != nil {
			return err
		}
		updated = rule
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func applyRulePatch(rule *model.ReminderRule, patch RulePatch) error {
	if patch.Title != nil {
		if title := sanitize.Text(*patch.Title); title != "" {
			rule.Title = title
		}
	}
	if patch.Description != nil {
		rule.Description = sanitize.HTML(*patch.Description)
	}
	if patch.Time != nil {
		rule.Time, _ = model.ParseClock(*patch.Time)
	}
	if patch.Category != nil {
		rule.Category = sanitize.Text(*patch.Category)
	}
	if patch.Color != nil {
		rule.Color = sanitize.Text(*patch.Color)
	}
	if patch.Interval != nil {
		rule.Interval = max(*patch.Interval, 1)
	}
	if patch.Unit != nil {
		unit, ok := recurrence.ParseUnit(*patch.Unit)
		if !ok {
			return common.Invalid("unit", "must be one of day, week, month, year")
		}
		rule.Unit = unit
	}
	if patch.StartDate != nil {
		if d, err := model.ParseDate(*patch.StartDate); err == nil {
			rule.StartDate = d
		}
	}
	if patch.EndDate != nil {
		// An empty or unparseable end date removes the bound.
		rule.EndDate = nil
		if d, err := model.ParseDate(*patch.EndDate); err == nil {
			rule.EndDate = &d
		}
	}
	return rule.Validate()
}

// DeleteBulk deletes the reminders in ids that user may delete. Unknown ids
// and reminders owned by someone else are skipped.
func (s *Service) DeleteBulk(ctx context.Context, ids []int64, user string) (*DeleteResult, error) {
	if len(ids) == 0 {
		return nil, common.Invalid("ids", "no ids provided")
	}
	user = sanitize.Text(user)

	result := &DeleteResult{Dates: []string{}}
	err := s.store.WithTx(ctx, func(tx service.Store) error {
		result.Deleted = 0
		dates := make(map[string]bool)
		for _, id := range ids {
			if id <= 0 {
				continue
			}
			r, err := tx.GetReminder(ctx, id)
			if err != nil {
				if common.IsNotFound(err) {
					continue
				}
				return err
			}
			if !s.policy.CanModify(user, r.Creator) {
				slog.Debug("skipping reminder not owned by user", "id", id, "user", user)
				continue
			}
			if err := tx.DeleteReminder(ctx, id); err != nil {
				return err
			}
			dates[model.FormatDate(r.Date)] = true
			result.Deleted++
		}
		result.Dates = sortedKeys(dates)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteRule deletes a reminder rule on behalf of user. Its occurrences stop
// appearing in later window queries.
func (s *Service) DeleteRule(ctx context.Context, id int64, user string) error {
	return s.store.WithTx(ctx, func(tx service.Store) error {
		rule, err := tx.GetReminderRule(ctx, id)
		if err != nil {
			return err
		}
		if err := s.policy.Authorize(sanitize.Text(user), rule.Creator, "delete reminder rule"); err != nil {
			return err
		}
		return tx.DeleteReminderRule(ctx, id)
	})
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
