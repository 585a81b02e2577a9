// Package recurrence expands fixed-interval recurrence rules into calendar dates.
//
// Every date handled here is a naive calendar day represented as a time.Time at
// midnight UTC. Callers that hold wall-clock times should pass them through Day first.
package recurrence

import "time"

// Date builds the calendar day y-m-d.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Day drops the clock and zone from t, keeping its calendar date.
func Day(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the following month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// addMonths moves t forward by n calendar months and places the result on
// anchorDay, clamped to the length of the target month.
func addMonths(t time.Time, n, anchorDay int) time.Time {
	index := int(t.Month()) - 1 + n
	year := t.Year() + floorDiv(index, 12)
	month := time.Month(index - floorDiv(index, 12)*12 + 1)
	return Date(year, month, clampDay(year, month, anchorDay))
}

// addYears moves t forward by n years keeping anchor's month and day.
// A Feb 29 anchor lands on Feb 28 in common years.
func addYears(t time.Time, n int, anchor time.Time) time.Time {
	year := t.Year() + n
	month := anchor.Month()
	return Date(year, month, clampDay(year, month, anchor.Day()))
}

// firstOfMonthAfter returns the 1st of the month n months after t.
func firstOfMonthAfter(t time.Time, n int) time.Time {
	return Date(t.Year(), t.Month()+time.Month(n), 1)
}

func clampDay(year int, month time.Month, day int) int {
	if last := DaysIn(year, month); day > last {
		return last
	}
	if day < 1 {
		return 1
	}
	return day
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
