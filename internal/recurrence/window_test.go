package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		name      string
		scope     Scope
		ref       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"day", ScopeDay, Date(2025, time.October, 16), Date(2025, time.October, 16), Date(2025, time.October, 16)},
		{"week from thursday", ScopeWeek, Date(2025, time.October, 16), Date(2025, time.October, 13), Date(2025, time.October, 19)},
		{"week from sunday", ScopeWeek, Date(2025, time.October, 19), Date(2025, time.October, 13), Date(2025, time.October, 19)},
		{"week from monday", ScopeWeek, Date(2025, time.October, 13), Date(2025, time.October, 13), Date(2025, time.October, 19)},
		{"week across new year", ScopeWeek, Date(2026, time.January, 1), Date(2025, time.December, 29), Date(2026, time.January, 4)},
		{"month", ScopeMonth, Date(2024, time.February, 10), Date(2024, time.February, 1), Date(2024, time.February, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Window(tt.scope, tt.ref)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestParseScope(t *testing.T) {
	assert.Equal(t, ScopeMonth, ParseScope("MONTH"))
	assert.Equal(t, ScopeWeek, ParseScope("week"))
	assert.Equal(t, ScopeDay, ParseScope(""))
	assert.Equal(t, ScopeDay, ParseScope("year"))
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(2025, time.February))
	assert.Equal(t, 31, DaysIn(2025, time.December))
	assert.Equal(t, 30, DaysIn(2025, time.April))
}
