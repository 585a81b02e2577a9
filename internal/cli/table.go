package cli

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/homehub/internal/expenses"
	"github.com/Veraticus/homehub/internal/model"
)

// Alignment is the horizontal alignment of a table column.
type Alignment int

// Column alignments.
const (
	AlignLeft Alignment = iota
	AlignRight
)

// RenderTable renders rows under headers with rounded borders. Short rows are
// padded with empty cells.
func RenderTable(headers []string, rows [][]string, aligns []Alignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == AlignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// FormatMoney renders an amount with two decimals behind the currency symbol.
func FormatMoney(currency string, amount decimal.Decimal) string {
	return currency + amount.StringFixed(2)
}

// RemindersTable lists reminders, marking occurrences generated from rules.
func RemindersTable(reminders []model.Reminder) string {
	rows := make([][]string, 0, len(reminders))
	for i := range reminders {
		r := &reminders[i]
		source := fmt.Sprintf("#%d", r.ID)
		switch {
		case r.Synthetic && r.RecurringID != nil:
			source = OccurrenceStyle.Render(fmt.Sprintf("rule #%d", *r.RecurringID))
		case r.RecurringID != nil:
			source = fmt.Sprintf("#%d (rule #%d)", r.ID, *r.RecurringID)
		}
		rows = append(rows, []string{
			model.FormatDate(r.Date),
			r.Time,
			r.Title,
			r.Category,
			r.Creator,
			source,
		})
	}
	return RenderTable([]string{"Date", "Time", "Title", "Category", "Creator", "Source"}, rows, nil)
}

// ReminderRulesTable lists reminder rules.
func ReminderRulesTable(rules []model.ReminderRule) string {
	rows := make([][]string, 0, len(rules))
	for i := range rules {
		r := &rules[i]
		end := "-"
		if r.EndDate != nil {
			end = model.FormatDate(*r.EndDate)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.ID),
			r.Title,
			fmt.Sprintf("every %d %s", max(r.Interval, 1), r.Unit),
			model.FormatDate(r.StartDate),
			end,
			r.Time,
			r.Creator,
		})
	}
	return RenderTable(
		[]string{"ID", "Title", "Schedule", "Start", "End", "Time", "Creator"},
		rows,
		[]Alignment{AlignRight})
}

// ExpenseRulesTable lists expense rules with their per-row amount.
func ExpenseRulesTable(rules []model.ExpenseRule, currency string) string {
	rows := make([][]string, 0, len(rules))
	for i := range rules {
		r := &rules[i]
		schedule := r.Frequency
		if r.Frequency == "monthly" {
			schedule += " (" + string(r.MonthlyMode) + ")"
		}
		end := "-"
		if r.EndDate != nil {
			end = model.FormatDate(*r.EndDate)
		}
		last := "never"
		if r.LastGeneratedDate != nil {
			last = model.FormatDate(*r.LastGeneratedDate)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.ID),
			r.Title,
			r.Category,
			FormatMoney(currency, r.Amount()),
			schedule,
			model.FormatDate(r.StartDate),
			end,
			last,
			r.Creator,
		})
	}
	return RenderTable(
		[]string{"ID", "Title", "Category", "Amount", "Schedule", "Start", "End", "Generated through", "Creator"},
		rows,
		[]Alignment{AlignRight, AlignLeft, AlignLeft, AlignRight})
}

// MonthTable lists every ledger row of a month view, day by day.
func MonthTable(payload *expenses.MonthPayload) string {
	days := make([]string, 0, len(payload.ByDate))
	for day := range payload.ByDate {
		days = append(days, day)
	}
	sort.Strings(days)

	currency := payload.Settings.Currency
	var rows [][]string
	for _, day := range days {
		for _, e := range payload.ByDate[day].Entries {
			category := ""
			if e.Category != nil {
				category = *e.Category
			}
			kind := ""
			if e.Recurring {
				kind = RepeatIcon
			}
			rows = append(rows, []string{
				day,
				fmt.Sprintf("%d", e.ID),
				e.Title,
				category,
				e.Payer,
				FormatMoney(currency, e.Amount),
				kind,
			})
		}
	}
	return RenderTable(
		[]string{"Date", "ID", "Title", "Category", "Payer", "Amount", ""},
		rows,
		[]Alignment{AlignLeft, AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignRight})
}

// MonthSummary renders the month totals in a framed box.
func MonthSummary(payload *expenses.MonthPayload) string {
	currency := payload.Settings.Currency
	s := payload.Summary

	content := fmt.Sprintf("Total: %s\n", TotalStyle.Render(FormatMoney(currency, s.TotalThisMonth)))
	if s.TopCategory != nil {
		content += fmt.Sprintf("Top category: %s\n", *s.TopCategory)
	}

	payers := sortedKeys(s.PerPayer)
	if len(payers) > 0 {
		content += "\nBy payer:\n"
	}
	for _, payer := range payers {
		name := payer
		if name == "" {
			name = "(unknown)"
		}
		content += fmt.Sprintf("  • %s: %s\n", name, FormatMoney(currency, s.PerPayer[payer]))
	}

	categories := sortedKeys(s.PerCategory)
	if len(categories) > 0 {
		content += "\nBy category:\n"
	}
	for _, category := range categories {
		content += fmt.Sprintf("  • %s: %s\n", category, FormatMoney(currency, s.PerCategory[category]))
	}

	title := fmt.Sprintf("%s %d-%02d", MoneyIcon, payload.Year, payload.Month)
	return RenderSummary(title, content)
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
