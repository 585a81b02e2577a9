package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Veraticus/homehub/internal/common"
	"github.com/Veraticus/homehub/internal/recurrence"
)

// Reminder is a dated reminder. Persisted rows have a positive ID; occurrences
// synthesized from a rule have ID 0, Synthetic set and RecurringID pointing at
// the rule.
type Reminder struct {
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	Date        time.Time
	RecurringID *int64
	Title       string
	Description string
	Creator     string
	Time        string
	Category    string
	Color       string
	ID          int64
	Synthetic   bool
}

// HasTime reports whether the reminder carries a time of day.
func (r *Reminder) HasTime() bool {
	return r.Time != ""
}

// MarshalJSON renders dates as YYYY-MM-DD and unset optional fields as null.
func (r Reminder) MarshalJSON() ([]byte, error) {
	var created *time.Time
	if !r.CreatedAt.IsZero() {
		created = &r.CreatedAt
	}
	return json.Marshal(&struct {
		CreatedAt   *time.Time `json:"created_at"`
		UpdatedAt   *time.Time `json:"updated_at"`
		RecurringID *int64     `json:"recurring_id"`
		Time        *string    `json:"time"`
		Category    *string    `json:"category"`
		Color       *string    `json:"color"`
		Date        string     `json:"date"`
		Title       string     `json:"title"`
		Description string     `json:"description"`
		Creator     string     `json:"creator"`
		ID          int64      `json:"id"`
		Synthetic   bool       `json:"synthetic"`
	}{
		CreatedAt:   created,
		UpdatedAt:   r.UpdatedAt,
		RecurringID: r.RecurringID,
		Time:        nullable(r.Time),
		Category:    nullable(r.Category),
		Color:       nullable(r.Color),
		Date:        FormatDate(r.Date),
		Title:       r.Title,
		Description: r.Description,
		Creator:     r.Creator,
		ID:          r.ID,
		Synthetic:   r.Synthetic,
	})
}

// Validate checks the fields every persisted reminder needs.
func (r *Reminder) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return common.Invalid("title", "is required")
	}
	if r.Date.IsZero() {
		return common.Invalid("date", "is required")
	}
	return nil
}

// ReminderRule is a stored recurrence whose occurrences are synthesized on read.
type ReminderRule struct {
	CreatedAt   time.Time
	StartDate   time.Time
	EndDate     *time.Time
	Title       string
	Description string
	Creator     string
	Time        string
	Category    string
	Color       string
	Unit        recurrence.Unit
	ID          int64
	Interval    int
}

// Recurrence returns the generator view of the rule.
func (r *ReminderRule) Recurrence() recurrence.Rule {
	return recurrence.Rule{
		Anchor: r.StartDate,
		End:    r.EndDate,
		Policy: recurrence.Policy{Unit: r.Unit, Interval: r.Interval},
	}
}

// Validate enforces the invariants checked when a rule is written.
func (r *ReminderRule) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return common.Invalid("title", "is required")
	}
	if r.StartDate.IsZero() {
		return common.Invalid("start_date", "is required")
	}
	if !r.Unit.Valid() {
		return common.Invalid("unit", "must be one of day, week, month, year")
	}
	if r.Interval < 1 {
		return common.Invalid("interval", "must be at least 1")
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return common.Invalid("end_date", "must not precede start_date")
	}
	return nil
}

// Occurrence projects the rule onto date d.
func (r *ReminderRule) Occurrence(d time.Time) Reminder {
	id := r.ID
	return Reminder{
		Date:        d,
		RecurringID: &id,
		Title:       r.Title,
		Description: r.Description,
		Creator:     r.Creator,
		Time:        r.Time,
		Category:    r.Category,
		Color:       r.Color,
		Synthetic:   true,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
