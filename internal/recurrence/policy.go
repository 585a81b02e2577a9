package recurrence

import (
	"strings"
)

// Unit is the step size of a recurrence rule.
type Unit string

// Supported units.
const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

// MonthlyMode selects how monthly expense rules align their occurrences.
type MonthlyMode string

// Monthly alignment modes.
const (
	// DayOfMonth keeps the anchor's day-of-month, clamped in short months.
	DayOfMonth MonthlyMode = "day_of_month"
	// Calendar bills on the 1st of every applicable month.
	Calendar MonthlyMode = "calendar"
)

// Legacy frequency values accepted from older clients and expense rules.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// Policy describes how a rule steps from one occurrence to the next.
type Policy struct {
	Unit        Unit
	MonthlyMode MonthlyMode
	Interval    int
}

// Valid reports whether u is one of the supported units.
func (u Unit) Valid() bool {
	switch u {
	case UnitDay, UnitWeek, UnitMonth, UnitYear:
		return true
	}
	return false
}

// ParseUnit normalizes a unit name. The second return is false for unknown values.
func ParseUnit(raw string) (Unit, bool) {
	u := Unit(strings.ToLower(strings.TrimSpace(raw)))
	return u, u.Valid()
}

// UnitFromFrequency maps a legacy frequency (daily, weekly, monthly) to its unit.
func UnitFromFrequency(raw string) (Unit, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case FrequencyDaily:
		return UnitDay, true
	case FrequencyWeekly:
		return UnitWeek, true
	case FrequencyMonthly:
		return UnitMonth, true
	}
	return "", false
}

// Frequency is the inverse of UnitFromFrequency. Units without a legacy name
// return an empty string.
func (u Unit) Frequency() string {
	switch u {
	case UnitDay:
		return FrequencyDaily
	case UnitWeek:
		return FrequencyWeekly
	case UnitMonth:
		return FrequencyMonthly
	}
	return ""
}

// ParseMonthlyMode normalizes a monthly mode. Empty input means DayOfMonth.
func ParseMonthlyMode(raw string) (MonthlyMode, bool) {
	switch m := MonthlyMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return DayOfMonth, true
	case DayOfMonth, Calendar:
		return m, true
	}
	return "", false
}

// Normalize returns the policy the generator actually runs. Stored data is
// never rejected here: an unknown unit degrades to a daily step of 1 and an
// interval below 1 is raised to 1.
func (p Policy) Normalize() Policy {
	if !p.Unit.Valid() {
		return Policy{Unit: UnitDay, Interval: 1, MonthlyMode: DayOfMonth}
	}
	if p.Interval < 1 {
		p.Interval = 1
	}
	if p.MonthlyMode != Calendar {
		p.MonthlyMode = DayOfMonth
	}
	return p
}

func (p Policy) calendarAligned() bool {
	return p.Unit == UnitMonth && p.MonthlyMode == Calendar
}
