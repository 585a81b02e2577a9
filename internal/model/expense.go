package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/homehub/internal/common"
	"github.com/Veraticus/homehub/internal/recurrence"
)

// Expense settings defaults.
const (
	DefaultCurrency   = "₹"
	SettingCurrency   = "currency"
	SettingCategories = "categories"
)

// ExpenseEntry is one ledger row. Rows generated from a rule carry its id in
// RecurringID; the rule may since have been deleted.
type ExpenseEntry struct {
	CreatedAt   time.Time
	Date        time.Time
	RecurringID *int64
	UnitPrice   decimal.NullDecimal
	Quantity    decimal.NullDecimal
	Amount      decimal.Decimal
	Title       string
	Category    string
	Payer       string
	ID          int64
}

// Recurring reports whether the entry was generated from a rule.
func (e *ExpenseEntry) Recurring() bool {
	return e.RecurringID != nil
}

// Validate checks the fields every ledger row needs.
func (e *ExpenseEntry) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return common.Invalid("title", "is required")
	}
	if e.Date.IsZero() {
		return common.Invalid("date", "is required")
	}
	return nil
}

// ExpenseRule generates ledger rows on a schedule. LastGeneratedDate is the
// sweep checkpoint.
type ExpenseRule struct {
	CreatedAt         time.Time
	StartDate         time.Time
	EndDate           *time.Time
	LastGeneratedDate *time.Time
	UnitPrice         decimal.Decimal
	DefaultQuantity   decimal.Decimal
	Title             string
	Category          string
	Creator           string
	Frequency         string
	MonthlyMode       recurrence.MonthlyMode
	ID                int64
}

// Quantity returns the default quantity, treating zero as one.
func (r *ExpenseRule) Quantity() decimal.Decimal {
	if r.DefaultQuantity.IsZero() {
		return decimal.NewFromInt(1)
	}
	return r.DefaultQuantity
}

// Amount is the ledger amount of one generated entry.
func (r *ExpenseRule) Amount() decimal.Decimal {
	return r.UnitPrice.Mul(r.Quantity())
}

// Recurrence returns the generator view of the rule. An unknown stored
// frequency becomes an invalid unit, which the generator treats as daily.
func (r *ExpenseRule) Recurrence() recurrence.Rule {
	unit, _ := recurrence.UnitFromFrequency(r.Frequency)
	return recurrence.Rule{
		Anchor: r.StartDate,
		End:    r.EndDate,
		Policy: recurrence.Policy{Unit: unit, Interval: 1, MonthlyMode: r.MonthlyMode},
	}
}

// Validate enforces the invariants checked when a rule is written.
func (r *ExpenseRule) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return common.Invalid("title", "is required")
	}
	if r.StartDate.IsZero() {
		return common.Invalid("start_date", "is required")
	}
	if _, ok := recurrence.UnitFromFrequency(r.Frequency); !ok {
		return common.Invalid("frequency", "must be one of daily, weekly, monthly")
	}
	if _, ok := recurrence.ParseMonthlyMode(string(r.MonthlyMode)); !ok {
		return common.Invalid("monthly_mode", "must be calendar or day_of_month")
	}
	if r.DefaultQuantity.IsNegative() {
		return common.Invalid("default_quantity", "must not be negative")
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return common.Invalid("end_date", "must not precede start_date")
	}
	return nil
}

// Entry builds the ledger row the rule generates on date d.
func (r *ExpenseRule) Entry(d time.Time) ExpenseEntry {
	id := r.ID
	return ExpenseEntry{
		Date:        d,
		RecurringID: &id,
		UnitPrice:   decimal.NewNullDecimal(r.UnitPrice),
		Quantity:    decimal.NewNullDecimal(r.Quantity()),
		Amount:      r.Amount(),
		Title:       r.Title,
		Category:    r.Category,
		Payer:       r.Creator,
	}
}

// Settings holds the expense page settings.
type Settings struct {
	Currency   string
	Categories []string
}

// SettingsFromValues applies defaults to the raw key-value settings.
func SettingsFromValues(values map[string]string) Settings {
	s := Settings{Currency: DefaultCurrency, Categories: []string{}}
	if c := strings.TrimSpace(values[SettingCurrency]); c != "" {
		s.Currency = c
	}
	s.Categories = SplitCategories(values[SettingCategories])
	return s
}

// SplitCategories parses a comma-separated category list, dropping blanks.
func SplitCategories(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
