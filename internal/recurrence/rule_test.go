package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dates(t *testing.T, values ...string) []time.Time {
	t.Helper()
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		d, err := time.Parse("2006-01-02", v)
		require.NoError(t, err)
		out = append(out, d)
	}
	return out
}

func ptr(t time.Time) *time.Time { return &t }

func TestRule_Enumerate(t *testing.T) {
	oct1, oct31 := MonthBounds(2025, time.October)

	tests := []struct {
		name  string
		rule  Rule
		start time.Time
		end   time.Time
		want  []string
	}{
		{
			name:  "monthly clamps to end of february",
			rule:  Rule{Anchor: Date(2025, time.January, 31), Policy: Policy{Unit: UnitMonth, Interval: 1}},
			start: Date(2025, time.February, 1),
			end:   Date(2025, time.February, 28),
			want:  []string{"2025-02-28"},
		},
		{
			name:  "monthly returns to anchor day after a short month",
			rule:  Rule{Anchor: Date(2025, time.January, 31), Policy: Policy{Unit: UnitMonth, Interval: 1}},
			start: Date(2025, time.February, 1),
			end:   Date(2025, time.May, 31),
			want:  []string{"2025-02-28", "2025-03-31", "2025-04-30", "2025-05-31"},
		},
		{
			name:  "yearly leap day falls back to february 28",
			rule:  Rule{Anchor: Date(2024, time.February, 29), Policy: Policy{Unit: UnitYear, Interval: 1}},
			start: Date(2025, time.February, 1),
			end:   Date(2025, time.February, 28),
			want:  []string{"2025-02-28"},
		},
		{
			name:  "yearly leap day is restored in the next leap year",
			rule:  Rule{Anchor: Date(2024, time.February, 29), Policy: Policy{Unit: UnitYear, Interval: 1}},
			start: Date(2028, time.February, 1),
			end:   Date(2028, time.March, 31),
			want:  []string{"2028-02-29"},
		},
		{
			name:  "biweekly",
			rule:  Rule{Anchor: Date(2025, time.October, 1), Policy: Policy{Unit: UnitWeek, Interval: 2}},
			start: oct1,
			end:   oct31,
			want:  []string{"2025-10-01", "2025-10-15", "2025-10-29"},
		},
		{
			name: "end date is inclusive",
			rule: Rule{
				Anchor: Date(2025, time.October, 10),
				End:    ptr(Date(2025, time.October, 12)),
				Policy: Policy{Unit: UnitDay, Interval: 1},
			},
			start: oct1,
			end:   oct31,
			want:  []string{"2025-10-10", "2025-10-11", "2025-10-12"},
		},
		{
			name:  "weekly",
			rule:  Rule{Anchor: Date(2025, time.October, 3), Policy: Policy{Unit: UnitWeek, Interval: 1}},
			start: oct1,
			end:   oct31,
			want:  []string{"2025-10-03", "2025-10-10", "2025-10-17", "2025-10-24", "2025-10-31"},
		},
		{
			name:  "anchor after window yields nothing",
			rule:  Rule{Anchor: Date(2025, time.November, 3), Policy: Policy{Unit: UnitDay, Interval: 1}},
			start: oct1,
			end:   oct31,
			want:  nil,
		},
		{
			name:  "calendar mode bills on the first of the month",
			rule:  Rule{Anchor: Date(2025, time.January, 15), Policy: Policy{Unit: UnitMonth, Interval: 1, MonthlyMode: Calendar}},
			start: Date(2025, time.January, 1),
			end:   Date(2025, time.April, 30),
			want:  []string{"2025-02-01", "2025-03-01", "2025-04-01"},
		},
		{
			name:  "calendar mode keeps an anchor on the first",
			rule:  Rule{Anchor: Date(2025, time.March, 1), Policy: Policy{Unit: UnitMonth, Interval: 1, MonthlyMode: Calendar}},
			start: Date(2025, time.March, 1),
			end:   Date(2025, time.April, 30),
			want:  []string{"2025-03-01", "2025-04-01"},
		},
		{
			name:  "unknown unit falls back to daily",
			rule:  Rule{Anchor: Date(2025, time.October, 30), Policy: Policy{Unit: "fortnight", Interval: 9}},
			start: oct1,
			end:   oct31,
			want:  []string{"2025-10-30", "2025-10-31"},
		},
		{
			name:  "interval below one is raised to one",
			rule:  Rule{Anchor: Date(2025, time.October, 30), Policy: Policy{Unit: UnitDay, Interval: 0}},
			start: oct1,
			end:   oct31,
			want:  []string{"2025-10-30", "2025-10-31"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rule.Enumerate(tt.start, tt.end)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, dates(t, tt.want...), got)
		})
	}
}

func TestRule_EnumerateMatchesStepByStep(t *testing.T) {
	rules := []Rule{
		{Anchor: Date(2001, time.March, 7), Policy: Policy{Unit: UnitDay, Interval: 3}},
		{Anchor: Date(2019, time.December, 30), Policy: Policy{Unit: UnitWeek, Interval: 2}},
		{Anchor: Date(2020, time.August, 31), Policy: Policy{Unit: UnitMonth, Interval: 1}},
		{Anchor: Date(2023, time.May, 29), Policy: Policy{Unit: UnitMonth, Interval: 3}},
	}
	start, end := MonthBounds(2025, time.October)

	for _, rule := range rules {
		var want []time.Time
		for d := rule.First(); !d.After(end); d = rule.Advance(d) {
			if !d.Before(start) {
				want = append(want, d)
			}
		}
		assert.Equal(t, want, rule.Enumerate(start, end), "rule %+v", rule)
	}
}

func TestRule_Resume(t *testing.T) {
	rule := Rule{Anchor: Date(2025, time.January, 15), Policy: Policy{Unit: UnitMonth, Interval: 1, MonthlyMode: Calendar}}

	assert.Equal(t, Date(2025, time.February, 1), rule.Resume(nil))
	assert.Equal(t, Date(2025, time.February, 1), rule.Resume(ptr(Date(2024, time.December, 1))))
	assert.Equal(t, Date(2025, time.April, 1), rule.Resume(ptr(Date(2025, time.March, 1))))

	daily := Rule{Anchor: Date(2025, time.October, 1), Policy: Policy{Unit: UnitDay, Interval: 1}}
	assert.Equal(t, Date(2025, time.October, 6), daily.Resume(ptr(Date(2025, time.October, 5))))
}

func TestRule_AdvanceIgnoresClock(t *testing.T) {
	rule := Rule{Anchor: Date(2025, time.January, 31), Policy: Policy{Unit: UnitMonth, Interval: 1}}
	from := time.Date(2025, time.January, 31, 18, 45, 0, 0, time.FixedZone("X", 3600))

	assert.Equal(t, Date(2025, time.February, 28), rule.Advance(from))
}

func TestParseHelpers(t *testing.T) {
	u, ok := ParseUnit(" Week ")
	assert.True(t, ok)
	assert.Equal(t, UnitWeek, u)

	_, ok = ParseUnit("fortnight")
	assert.False(t, ok)

	u, ok = UnitFromFrequency("weekly")
	assert.True(t, ok)
	assert.Equal(t, UnitWeek, u)
	assert.Equal(t, "monthly", UnitMonth.Frequency())
	assert.Empty(t, UnitYear.Frequency())

	mode, ok := ParseMonthlyMode("")
	assert.True(t, ok)
	assert.Equal(t, DayOfMonth, mode)

	_, ok = ParseMonthlyMode("quarterly")
	assert.False(t, ok)
}
