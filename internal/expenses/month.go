package expenses

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/homehub/internal/model"
	"github.com/Veraticus/homehub/internal/recurrence"
)

// MonthPayload is the month view of the ledger.
type MonthPayload struct {
	ByDate   map[string]*DayTotal `json:"by_date"`
	Settings SettingsView         `json:"settings"`
	Summary  Summary              `json:"summary"`
	Year     int                  `json:"year"`
	Month    int                  `json:"month"`
}

// DayTotal is one day of the month view.
type DayTotal struct {
	Total   decimal.Decimal `json:"total"`
	Entries []EntryView     `json:"entries"`
}

// EntryView is a ledger row as the month view shows it.
type EntryView struct {
	Category  *string             `json:"category"`
	UnitPrice decimal.NullDecimal `json:"unit_price"`
	Quantity  decimal.NullDecimal `json:"quantity"`
	Amount    decimal.Decimal     `json:"amount"`
	Title     string              `json:"title"`
	Payer     string              `json:"payer"`
	Date      string              `json:"date"`
	ID        int64               `json:"id"`
	Recurring bool                `json:"recurring"`
}

// Summary aggregates the month. PerCategory only counts categorized rows.
type Summary struct {
	PerPayer       map[string]decimal.Decimal `json:"per_payer"`
	PerCategory    map[string]decimal.Decimal `json:"per_category"`
	TopCategory    *string                    `json:"top_category"`
	TotalThisMonth decimal.Decimal            `json:"total_this_month"`
}

// SettingsView is the settings block of the month view.
type SettingsView struct {
	Currency   string   `json:"currency"`
	Categories []string `json:"categories"`
}

// NormalizeMonth returns year and month, falling back to the month of today
// when month is outside 1..12 or year is not positive.
func NormalizeMonth(year, month int, today time.Time) (int, time.Month) {
	if month < 1 || month > 12 || year < 1 {
		return today.Year(), today.Month()
	}
	return year, time.Month(month)
}

// BuildMonthPayload aggregates the ledger rows of one calendar month.
func (s *Service) BuildMonthPayload(ctx context.Context, year int, month time.Month) (*MonthPayload, error) {
	start, end := recurrence.MonthBounds(year, month)
	entries, err := s.store.ListExpenseEntries(ctx, start, end)
	if err != nil {
		return nil, err
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	payload := Aggregate(entries)
	payload.Year = year
	payload.Month = int(month)
	payload.Settings = SettingsView{Currency: settings.Currency, Categories: settings.Categories}
	return payload, nil
}

// Aggregate groups entries by day and computes the month summary. Entries
// must already be ordered by date and creation.
func Aggregate(entries []model.ExpenseEntry) *MonthPayload {
	payload := &MonthPayload{
		ByDate: make(map[string]*DayTotal),
		Summary: Summary{
			PerPayer:    make(map[string]decimal.Decimal),
			PerCategory: make(map[string]decimal.Decimal),
		},
	}

	for i := range entries {
		e := &entries[i]
		key := model.FormatDate(e.Date)

		day, ok := payload.ByDate[key]
		if !ok {
			day = &DayTotal{Entries: []EntryView{}}
			payload.ByDate[key] = day
		}
		day.Total = day.Total.Add(e.Amount)
		day.Entries = append(day.Entries, NewEntryView(e))

		payload.Summary.TotalThisMonth = payload.Summary.TotalThisMonth.Add(e.Amount)
		payload.Summary.PerPayer[e.Payer] = payload.Summary.PerPayer[e.Payer].Add(e.Amount)
		if e.Category != "" {
			payload.Summary.PerCategory[e.Category] = payload.Summary.PerCategory[e.Category].Add(e.Amount)
		}
	}

	payload.Summary.TopCategory = topCategory(payload.Summary.PerCategory)
	return payload
}

// topCategory picks the largest category, breaking ties by name.
func topCategory(totals map[string]decimal.Decimal) *string {
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	var top *string
	for i := range names {
		if top == nil || totals[names[i]].GreaterThan(totals[*top]) {
			top = &names[i]
		}
	}
	return top
}

// NewEntryView converts a ledger row for display.
func NewEntryView(e *model.ExpenseEntry) EntryView {
	v := EntryView{
		UnitPrice: e.UnitPrice,
		Quantity:  e.Quantity,
		Amount:    e.Amount,
		Title:     e.Title,
		Payer:     e.Payer,
		Date:      model.FormatDate(e.Date),
		ID:        e.ID,
		Recurring: e.Recurring(),
	}
	if e.Category != "" {
		category := e.Category
		v.Category = &category
	}
	return v
}
