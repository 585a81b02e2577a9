package expenses

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/homehub/internal/common"
	"github.com/Veraticus/homehub/internal/model"
	"github.com/Veraticus/homehub/internal/sanitize"
	"github.com/Veraticus/homehub/internal/service"
)

// EntryInput is a request to add a one-off ledger row. Amount wins over
// UnitPrice × Quantity when both are given.
type EntryInput struct {
	Title     string
	Category  string
	Payer     string
	Date      string
	UnitPrice string
	Quantity  string
	Amount    string
}

// EntryPatch lists the ledger row fields to change. Nil fields are left
// alone.
type EntryPatch struct {
	Title     *string
	Category  *string
	Date      *string
	UnitPrice *string
	Quantity  *string
	Amount    *string
}

// CreateEntry stores a one-off ledger row. The date defaults to today.
func (s *Service) CreateEntry(ctx context.Context, in EntryInput) (*model.ExpenseEntry, error) {
	entry := &model.ExpenseEntry{
		Title:    sanitize.Text(in.Title),
		Category: sanitize.Text(in.Category),
		Payer:    sanitize.Text(in.Payer),
	}
	if entry.Title == "" {
		return nil, common.Invalid("title", "is required")
	}

	var err error
	if entry.Date, err = parseDateOr(in.Date, "date", s.Today()); err != nil {
		return nil, err
	}
	if entry.UnitPrice, err = parseNullMoney(in.UnitPrice, "unit_price"); err != nil {
		return nil, err
	}
	if entry.Quantity, err = parseNullMoney(in.Quantity, "quantity"); err != nil {
		return nil, err
	}
	amount, ok, err := parseMoney(in.Amount, "amount")
	if err != nil {
		return nil, err
	}
	switch {
	case ok:
		entry.Amount = amount
	case entry.UnitPrice.Valid:
		entry.Amount = entryAmount(entry)
	default:
		return nil, common.Invalid("amount", "is required without a unit price")
	}

	err = s.store.WithTx(ctx, func(tx service.Store) error {
		return tx.CreateExpenseEntry(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateEntry edits a ledger row. Only the payer or an administrator may edit
// it. A price or quantity change recomputes the amount unless an amount is
// given too.
func (s *Service) UpdateEntry(ctx context.Context, id int64, user string, patch EntryPatch) (*model.ExpenseEntry, error) {
	var entry *model.ExpenseEntry
	err := s.store.WithTx(ctx, func(tx service.Store) error {
		var err error
		if entry, err = tx.GetExpenseEntry(ctx, id); err != nil {
			return err
		}
		if err := s.policy.Authorize(user, entry.Payer, "edit expense"); err != nil {
			return err
		}
		if err := applyEntryPatch(entry, patch); err != nil {
			return err
		}
		return tx.UpdateExpenseEntry(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func applyEntryPatch(e *model.ExpenseEntry, p EntryPatch) error {
	if p.Title != nil {
		if title := sanitize.Text(*p.Title); title != "" {
			e.Title = title
		}
	}
	if p.Category != nil {
		e.Category = sanitize.Text(*p.Category)
	}
	if p.Date != nil {
		d, err := model.ParseDate(*p.Date)
		if err != nil {
			return common.Invalid("date", "must be YYYY-MM-DD")
		}
		e.Date = d
	}

	recompute := false
	if p.UnitPrice != nil {
		price, err := parseNullMoney(*p.UnitPrice, "unit_price")
		if err != nil {
			return err
		}
		e.UnitPrice = price
		recompute = true
	}
	if p.Quantity != nil {
		quantity, err := parseNullMoney(*p.Quantity, "quantity")
		if err != nil {
			return err
		}
		e.Quantity = quantity
		recompute = true
	}

	if p.Amount != nil {
		amount, ok, err := parseMoney(*p.Amount, "amount")
		if err != nil {
			return err
		}
		if ok {
			e.Amount = amount
			return nil
		}
	}
	if recompute && e.UnitPrice.Valid {
		e.Amount = entryAmount(e)
	}
	return nil
}

// DeleteEntry removes a ledger row. Only the payer or an administrator may
// delete it.
func (s *Service) DeleteEntry(ctx context.Context, id int64, user string) error {
	err := s.store.WithTx(ctx, func(tx service.Store) error {
		entry, err := tx.GetExpenseEntry(ctx, id)
		if err != nil {
			return err
		}
		if err := s.policy.Authorize(user, entry.Payer, "delete expense"); err != nil {
			return err
		}
		return tx.DeleteExpenseEntry(ctx, id)
	})
	if err != nil {
		return err
	}
	slog.Info("deleted expense entry", "entry_id", id, "user", user)
	return nil
}

func parseNullMoney(raw, field string) (decimal.NullDecimal, error) {
	d, ok, err := parseMoney(raw, field)
	if err != nil || !ok {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
