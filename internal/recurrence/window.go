package recurrence

import (
	"strings"
	"time"
)

// Scope is the size of a window query.
type Scope string

// Window scopes.
const (
	ScopeDay   Scope = "day"
	ScopeWeek  Scope = "week"
	ScopeMonth Scope = "month"
)

// ParseScope normalizes a scope name, falling back to ScopeDay.
func ParseScope(raw string) Scope {
	switch s := Scope(strings.ToLower(strings.TrimSpace(raw))); s {
	case ScopeWeek, ScopeMonth:
		return s
	}
	return ScopeDay
}

// Window returns the inclusive bounds of the scope containing ref. Weeks start
// on Monday.
func Window(scope Scope, ref time.Time) (start, end time.Time) {
	ref = Day(ref)
	switch scope {
	case ScopeWeek:
		offset := (int(ref.Weekday()) + 6) % 7
		start = ref.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6)
	case ScopeMonth:
		return MonthBounds(ref.Year(), ref.Month())
	default:
		return ref, ref
	}
}

// MonthBounds returns the first and last day of a calendar month.
func MonthBounds(year int, month time.Month) (first, last time.Time) {
	return Date(year, month, 1), Date(year, month, DaysIn(year, month))
}
