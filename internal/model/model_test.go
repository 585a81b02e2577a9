package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/homehub/internal/common"
	"github.com/Veraticus/homehub/internal/recurrence"
)

func TestReminder_MarshalJSON(t *testing.T) {
	ruleID := int64(7)
	r := &Reminder{
		Date:        recurrence.Date(2025, time.October, 3),
		RecurringID: &ruleID,
		Title:       "Bins",
		Creator:     "sam",
		Time:        "07:15",
		Synthetic:   true,
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "2025-10-03", got["date"])
	assert.Equal(t, "07:15", got["time"])
	assert.Equal(t, float64(7), got["recurring_id"])
	assert.Equal(t, float64(0), got["id"])
	assert.Equal(t, true, got["synthetic"])
	assert.Nil(t, got["category"])
	assert.Nil(t, got["created_at"])
}

func TestReminderRule_Validate(t *testing.T) {
	end := recurrence.Date(2025, time.September, 1)
	valid := ReminderRule{Title: "Water plants", StartDate: recurrence.Date(2025, time.October, 1), Unit: recurrence.UnitWeek, Interval: 2}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *ReminderRule)
		field  string
	}{
		{"missing title", func(r *ReminderRule) { r.Title = " " }, "title"},
		{"bad unit", func(r *ReminderRule) { r.Unit = "fortnight" }, "unit"},
		{"zero interval", func(r *ReminderRule) { r.Interval = 0 }, "interval"},
		{"end before start", func(r *ReminderRule) { r.EndDate = &end }, "end_date"},
		{"missing start", func(r *ReminderRule) { r.StartDate = time.Time{} }, "start_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := r.Validate()
			var verr *common.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestReminderRule_Occurrence(t *testing.T) {
	rule := ReminderRule{ID: 3, Title: "Bins", Category: "home", Time: "07:00"}
	occ := rule.Occurrence(recurrence.Date(2025, time.October, 6))

	assert.True(t, occ.Synthetic)
	assert.Zero(t, occ.ID)
	require.NotNil(t, occ.RecurringID)
	assert.Equal(t, int64(3), *occ.RecurringID)
	assert.Equal(t, "home", occ.Category)
	assert.True(t, occ.HasTime())
}

func TestExpenseRule_LegacyFrequency(t *testing.T) {
	rule := ExpenseRule{Title: "Milk", Frequency: "weekly", StartDate: recurrence.Date(2025, time.October, 3)}
	start, end := recurrence.MonthBounds(2025, time.October)

	got := rule.Recurrence().Enumerate(start, end)
	want := []time.Time{
		recurrence.Date(2025, time.October, 3),
		recurrence.Date(2025, time.October, 10),
		recurrence.Date(2025, time.October, 17),
		recurrence.Date(2025, time.October, 24),
		recurrence.Date(2025, time.October, 31),
	}
	assert.Equal(t, want, got)
}

func TestExpenseRule_Entry(t *testing.T) {
	rule := ExpenseRule{
		ID:              9,
		Title:           "Milk",
		Category:        "groceries",
		Creator:         "sam",
		UnitPrice:       decimal.RequireFromString("32.50"),
		DefaultQuantity: decimal.RequireFromString("2"),
	}
	entry := rule.Entry(recurrence.Date(2025, time.October, 3))

	assert.True(t, entry.Recurring())
	assert.Equal(t, "sam", entry.Payer)
	assert.True(t, decimal.RequireFromString("65").Equal(entry.Amount))
	assert.True(t, entry.Quantity.Valid)

	rule.DefaultQuantity = decimal.Zero
	assert.True(t, rule.Amount().Equal(rule.UnitPrice))
}

func TestExpenseRule_Validate(t *testing.T) {
	rule := ExpenseRule{Title: "Rent", Frequency: "monthly", MonthlyMode: recurrence.Calendar, StartDate: recurrence.Date(2025, time.January, 1)}
	require.NoError(t, rule.Validate())

	rule.Frequency = "yearly"
	assert.ErrorIs(t, rule.Validate(), common.ErrInvalidInput)

	rule.Frequency = "monthly"
	rule.MonthlyMode = "weekly"
	assert.ErrorIs(t, rule.Validate(), common.ErrInvalidInput)
}

func TestSettingsFromValues(t *testing.T) {
	s := SettingsFromValues(nil)
	assert.Equal(t, DefaultCurrency, s.Currency)
	assert.Empty(t, s.Categories)

	s = SettingsFromValues(map[string]string{"currency": "$", "categories": " food, ,rent,utilities "})
	assert.Equal(t, "$", s.Currency)
	assert.Equal(t, []string{"food", "rent", "utilities"}, s.Categories)
}
