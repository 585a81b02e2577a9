package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/homehub/internal/common"
	"github.com/Veraticus/homehub/internal/recurrence"
)

// DateLayout is the only accepted calendar date format.
const DateLayout = "2006-01-02"

// ParseDate parses a strict YYYY-MM-DD date into UTC midnight.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", common.ErrInvalidInput, raw)
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", common.ErrInvalidInput, raw)
	}
	return recurrence.Day(d), nil
}

// ParseOptionalDate parses raw when it is non-empty. Empty input yields nil.
func ParseOptionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatOptionalDate renders t, or returns nil for an unset date.
func FormatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatDate(*t)
	return &s
}

// ParseClock validates a zero-padded HH:MM time of day. Anything else,
// including seconds or offsets, is reported as unset.
func ParseClock(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) != 5 || raw[2] != ':' {
		return "", false
	}
	hh, ok := twoDigits(raw[0], raw[1])
	if !ok || hh >= 24 {
		return "", false
	}
	mm, ok := twoDigits(raw[3], raw[4])
	if !ok || mm >= 60 {
		return "", false
	}
	return raw, true
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}
