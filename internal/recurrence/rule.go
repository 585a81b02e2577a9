package recurrence

import "time"

// Rule is a recurrence definition: a policy anchored at a start date with an
// optional inclusive end date.
type Rule struct {
	Anchor time.Time
	End    *time.Time
	Policy
}

// First returns the first occurrence of the rule. For calendar-aligned monthly
// rules that is the anchor when it falls on the 1st, otherwise the 1st of the
// following month.
func (r Rule) First() time.Time {
	anchor := Day(r.Anchor)
	if r.Policy.Normalize().calendarAligned() && anchor.Day() != 1 {
		return firstOfMonthAfter(anchor, 1)
	}
	return anchor
}

// Advance returns the occurrence that follows from.
//
// Monthly and yearly steps always target the anchor's day-of-month, so a
// clamp in a short month does not shrink later occurrences.
func (r Rule) Advance(from time.Time) time.Time {
	p := r.Policy.Normalize()
	from = Day(from)
	switch p.Unit {
	case UnitWeek:
		return from.AddDate(0, 0, 7*p.Interval)
	case UnitMonth:
		if p.calendarAligned() {
			return firstOfMonthAfter(from, p.Interval)
		}
		return addMonths(from, p.Interval, Day(r.Anchor).Day())
	case UnitYear:
		return addYears(from, p.Interval, Day(r.Anchor))
	default:
		return from.AddDate(0, 0, p.Interval)
	}
}

// Resume returns the first date a ledger sweep still has to look at, given the
// last date it already generated. A nil checkpoint, or one that predates the
// anchor, restarts from First.
func (r Rule) Resume(checkpoint *time.Time) time.Time {
	first := r.First()
	if checkpoint == nil || Day(*checkpoint).Before(Day(r.Anchor)) {
		return first
	}
	return r.Advance(*checkpoint)
}

// Active reports whether the rule can still produce date d.
func (r Rule) Active(d time.Time) bool {
	return r.End == nil || !Day(d).After(Day(*r.End))
}

// Enumerate returns every occurrence of the rule inside [start, end], in
// ascending order. The result depends only on the rule and the window.
func (r Rule) Enumerate(start, end time.Time) []time.Time {
	return r.EnumerateFrom(r.First(), start, end)
}

// EnumerateFrom is Enumerate with an explicit starting cursor, used by callers
// that resume from a checkpoint.
func (r Rule) EnumerateFrom(cursor, start, end time.Time) []time.Time {
	start, end = Day(start), Day(end)
	cursor = r.fastForward(Day(cursor), start)

	for cursor.Before(start) {
		next := r.Advance(cursor)
		if !next.After(cursor) {
			return nil
		}
		cursor = next
	}

	var dates []time.Time
	for !cursor.After(end) && r.Active(cursor) {
		dates = append(dates, cursor)
		next := r.Advance(cursor)
		if !next.After(cursor) {
			break
		}
		cursor = next
	}
	return dates
}

// fastForward skips whole day or week steps that end before start. Month and
// year steps have variable length and are left to the caller's loop.
func (r Rule) fastForward(cursor, start time.Time) time.Time {
	p := r.Policy.Normalize()
	var step int
	switch p.Unit {
	case UnitDay:
		step = p.Interval
	case UnitWeek:
		step = 7 * p.Interval
	default:
		return cursor
	}
	gap := daysBetween(cursor, start)
	if gap <= step {
		return cursor
	}
	return cursor.AddDate(0, 0, (gap/step)*step-step)
}
