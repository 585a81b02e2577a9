package expenses

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/homehub/internal/common"
	"github.com/Veraticus/homehub/internal/model"
	"github.com/Veraticus/homehub/internal/recurrence"
	"github.com/Veraticus/homehub/internal/sanitize"
	"github.com/Veraticus/homehub/internal/service"
)

// RuleInput is a request to create an expense rule. Decimal fields are the
// raw submitted text.
type RuleInput struct {
	Title           string
	Category        string
	Creator         string
	UnitPrice       string
	DefaultQuantity string
	Frequency       string
	MonthlyMode     string
	StartDate       string
	EndDate         string
}

// RulePatch lists the rule fields to change. Nil fields are left alone; an
// empty EndDate removes the bound.
type RulePatch struct {
	Title           *string
	Category        *string
	UnitPrice       *string
	DefaultQuantity *string
	Frequency       *string
	MonthlyMode     *string
	StartDate       *string
	EndDate         *string
}

// EditResult reports what an edit did to the rule's ledger rows.
type EditResult struct {
	Rule    *model.ExpenseRule
	Pruned  int64
	Updated int
}

// ListRules returns every expense rule, newest first.
func (s *Service) ListRules(ctx context.Context) ([]model.ExpenseRule, error) {
	return s.store.ListExpenseRules(ctx)
}

// GetRule returns one expense rule.
func (s *Service) GetRule(ctx context.Context, id int64) (*model.ExpenseRule, error) {
	return s.store.GetExpenseRule(ctx, id)
}

// CreateRule stores a new expense rule. Its rows appear on the next sweep.
func (s *Service) CreateRule(ctx context.Context, in RuleInput) (*model.ExpenseRule, error) {
	rule := &model.ExpenseRule{
		Title:     sanitize.Text(in.Title),
		Category:  sanitize.Text(in.Category),
		Creator:   sanitize.Text(in.Creator),
		Frequency: "daily",
	}
	if rule.Title == "" {
		return nil, common.Invalid("title", "is required")
	}

	var err error
	if rule.UnitPrice, _, err = parseMoney(in.UnitPrice, "unit_price"); err != nil {
		return nil, err
	}
	quantity, ok, err := parseMoney(in.DefaultQuantity, "default_quantity")
	if err != nil {
		return nil, err
	}
	if !ok {
		quantity = decimal.NewFromInt(1)
	}
	rule.DefaultQuantity = quantity

	if f := strings.ToLower(strings.TrimSpace(in.Frequency)); f != "" {
		rule.Frequency = f
	}
	mode, ok := recurrence.ParseMonthlyMode(in.MonthlyMode)
	if !ok {
		return nil, common.Invalid("monthly_mode", "must be calendar or day_of_month")
	}
	rule.MonthlyMode = mode

	if rule.StartDate, err = parseDateOr(in.StartDate, "start_date", s.Today()); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.EndDate) != "" {
		end, err := model.ParseDate(in.EndDate)
		if err != nil {
			return nil, common.Invalid("end_date", "must be YYYY-MM-DD")
		}
		rule.EndDate = &end
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx service.Store) error {
		return tx.CreateExpenseRule(ctx, rule)
	})
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// EditRule changes a rule, deletes its rows that now fall outside
// [start, end] and copies the changed fields onto the rows that remain.
// Only the rule's creator or an administrator may edit it.
func (s *Service) EditRule(ctx context.Context, id int64, user string, patch RulePatch) (*EditResult, error) {
	result := &EditResult{}
	err := s.store.WithTx(ctx, func(tx service.Store) error {
		rule, err := tx.GetExpenseRule(ctx, id)
		if err != nil {
			return err
		}
		if err := s.policy.Authorize(user, rule.Creator, "edit expense rule"); err != nil {
			return err
		}

		changed, err := applyRulePatch(rule, patch)
		if err != nil {
			return err
		}
		if err := rule.Validate(); err != nil {
			return err
		}
		if err := tx.UpdateExpenseRule(ctx, rule); err != nil {
			return err
		}

		if result.Pruned, err = tx.PruneRuleEntries(ctx, rule.ID, rule.StartDate, rule.EndDate); err != nil {
			return err
		}
		if result.Updated, err = propagate(ctx, tx, rule, changed); err != nil {
			return err
		}
		result.Rule = rule
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("edited expense rule",
		"rule_id", id,
		"user", user,
		"pruned", result.Pruned,
		"updated", result.Updated)
	return result, nil
}

// ruleChanges records which ledger-visible fields an edit touched.
type ruleChanges struct {
	title, category, price, quantity bool
}

func (c ruleChanges) any() bool {
	return c.title || c.category || c.price || c.quantity
}

func applyRulePatch(rule *model.ExpenseRule, p RulePatch) (ruleChanges, error) {
	var changed ruleChanges

	if p.Title != nil {
		if title := sanitize.Text(*p.Title); title != "" && title != rule.Title {
			rule.Title = title
			changed.title = true
		}
	}
	if p.Category != nil {
		if category := sanitize.Text(*p.Category); category != rule.Category {
			rule.Category = category
			changed.category = true
		}
	}
	if p.UnitPrice != nil {
		price, ok, err := parseMoney(*p.UnitPrice, "unit_price")
		if err != nil {
			return changed, err
		}
		if ok && !price.Equal(rule.UnitPrice) {
			rule.UnitPrice = price
			changed.price = true
		}
	}
	if p.DefaultQuantity != nil {
		quantity, ok, err := parseMoney(*p.DefaultQuantity, "default_quantity")
		if err != nil {
			return changed, err
		}
		if ok && !quantity.Equal(rule.DefaultQuantity) {
			rule.DefaultQuantity = quantity
			changed.quantity = true
		}
	}
	if p.Frequency != nil {
		if f := strings.ToLower(strings.TrimSpace(*p.Frequency)); f != "" {
			rule.Frequency = f
		}
	}
	if p.MonthlyMode != nil {
		mode, ok := recurrence.ParseMonthlyMode(*p.MonthlyMode)
		if !ok {
			return changed, common.Invalid("monthly_mode", "must be calendar or day_of_month")
		}
		rule.MonthlyMode = mode
	}
	if p.StartDate != nil {
		start, err := model.ParseDate(*p.StartDate)
		if err != nil {
			return changed, common.Invalid("start_date", "must be YYYY-MM-DD")
		}
		rule.StartDate = start
	}
	if p.EndDate != nil {
		if strings.TrimSpace(*p.EndDate) == "" {
			rule.EndDate = nil
		} else {
			end, err := model.ParseDate(*p.EndDate)
			if err != nil {
				return changed, common.Invalid("end_date", "must be YYYY-MM-DD")
			}
			rule.EndDate = &end
		}
	}
	return changed, nil
}

// propagate copies the changed rule fields onto the rule's surviving rows.
// The amount is recomputed only when the price or quantity changed, so a
// hand-corrected amount survives a rename.
func propagate(ctx context.Context, tx service.Store, rule *model.ExpenseRule, changed ruleChanges) (int, error) {
	if !changed.any() {
		return 0, nil
	}
	entries, err := tx.ListRuleEntries(ctx, rule.ID)
	if err != nil {
		return 0, err
	}

	for i := range entries {
		e := &entries[i]
		if changed.title {
			e.Title = rule.Title
		}
		if changed.category {
			e.Category = rule.Category
		}
		if changed.price {
			e.UnitPrice = decimal.NewNullDecimal(rule.UnitPrice)
		}
		if changed.quantity {
			e.Quantity = decimal.NewNullDecimal(rule.Quantity())
		}
		if changed.price || changed.quantity {
			e.Amount = entryAmount(e)
		}
		if err := tx.UpdateExpenseEntry(ctx, e); err != nil {
			return i, fmt.Errorf("failed to update entry %d: %w", e.ID, err)
		}
	}
	return len(entries), nil
}

// entryAmount is unit price times quantity, with a missing quantity counted
// as one and a missing price as zero.
func entryAmount(e *model.ExpenseEntry) decimal.Decimal {
	quantity := decimal.NewFromInt(1)
	if e.Quantity.Valid {
		quantity = e.Quantity.Decimal
	}
	if !e.UnitPrice.Valid {
		return decimal.Zero
	}
	return e.UnitPrice.Decimal.Mul(quantity)
}

// DeleteRule removes a rule. Its generated rows are kept as orphaned history
// unless deleteEntries is set. It returns how many rows were deleted.
func (s *Service) DeleteRule(ctx context.Context, id int64, user string, deleteEntries bool) (int64, error) {
	var removed int64
	err := s.store.WithTx(ctx, func(tx service.Store) error {
		rule, err := tx.GetExpenseRule(ctx, id)
		if err != nil {
			return err
		}
		if err := s.policy.Authorize(user, rule.Creator, "delete expense rule"); err != nil {
			return err
		}
		if deleteEntries {
			if removed, err = tx.DeleteRuleEntries(ctx, id); err != nil {
				return err
			}
		}
		return tx.DeleteExpenseRule(ctx, id)
	})
	if err != nil {
		return 0, err
	}
	slog.Info("deleted expense rule", "rule_id", id, "user", user, "entries_removed", removed)
	return removed, nil
}

// ParseFlag reads the truthy spellings accepted for a form checkbox.
func ParseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
