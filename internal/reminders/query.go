package reminders

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Veraticus/homehub/internal/model"
	"github.com/Veraticus/homehub/internal/recurrence"
)

// ListResult is the answer to a window query.
type ListResult struct {
	Counts           map[string]int            `json:"counts"`
	CategoriesCounts map[string]map[string]int `json:"categories_counts"`
	Scope            recurrence.Scope          `json:"scope"`
	Date             string                    `json:"date"`
	Start            string                    `json:"start"`
	End              string                    `json:"end"`
	Reminders        []model.Reminder          `json:"reminders"`
	RecurringRules   []RuleSummary             `json:"recurring_rules"`
}

// RuleSummary describes a rule and the dates it produced in the window.
type RuleSummary struct {
	Time        *string         `json:"time"`
	Category    *string         `json:"category"`
	Color       *string         `json:"color"`
	EndDate     *string         `json:"end_date"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Creator     string          `json:"creator"`
	Unit        recurrence.Unit `json:"unit"`
	StartDate   string          `json:"start_date"`
	Dates       []string        `json:"dates"`
	ID          int64           `json:"id"`
	Interval    int             `json:"interval"`
}

type occurrenceKey struct {
	date   string
	title  string
	ruleID int64
}

// List returns every reminder in the scope window around ref: persisted rows
// merged with occurrences synthesized from rules. A persisted row that carries
// a rule's id, date and title stands in for that occurrence.
func (s *Service) List(ctx context.Context, scope recurrence.Scope, ref time.Time) (*ListResult, error) {
	ref = recurrence.Day(ref)
	start, end := recurrence.Window(scope, ref)

	persisted, err := s.store.ListReminders(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	rules, err := s.store.ListReminderRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminder rules: %w", err)
	}

	covered := make(map[occurrenceKey]bool, len(persisted))
	for i := range persisted {
		if r := &persisted[i]; r.RecurringID != nil {
			covered[occurrenceKey{ruleID: *r.RecurringID, date: model.FormatDate(r.Date), title: r.Title}] = true
		}
	}

	combined := persisted
	summaries := make([]RuleSummary, 0, len(rules))
	for i := range rules {
		rule := &rules[i]
		summary := Summarize(rule)
		for _, d := range rule.Recurrence().Enumerate(start, end) {
			day := model.FormatDate(d)
			summary.Dates = append(summary.Dates, day)
			if covered[occurrenceKey{ruleID: rule.ID, date: day, title: rule.Title}] {
				continue
			}
			combined = append(combined, rule.Occurrence(d))
		}
		summaries = append(summaries, summary)
	}

	Sort(combined)

	result := &ListResult{
		Scope:            scope,
		Date:             model.FormatDate(ref),
		Start:            model.FormatDate(start),
		End:              model.FormatDate(end),
		Reminders:        combined,
		Counts:           map[string]int{},
		CategoriesCounts: map[string]map[string]int{},
		RecurringRules:   summaries,
	}
	if result.Reminders == nil {
		result.Reminders = []model.Reminder{}
	}
	if scope == recurrence.ScopeMonth {
		result.Counts, result.CategoriesCounts = CountByDay(combined)
	}
	return result, nil
}

// Sort orders reminders by date, then timed before untimed, then time. Ties
// put persisted rows before synthesized ones and then order by id.
func Sort(reminders []model.Reminder) {
	sort.SliceStable(reminders, func(i, j int) bool {
		a, b := &reminders[i], &reminders[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.HasTime() != b.HasTime() {
			return a.HasTime()
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		if a.Synthetic != b.Synthetic {
			return !a.Synthetic
		}
		return sortID(a) < sortID(b)
	})
}

func sortID(r *model.Reminder) int64 {
	if r.Synthetic && r.RecurringID != nil {
		return *r.RecurringID
	}
	return r.ID
}

// CountByDay tallies reminders per day and per category within each day.
func CountByDay(reminders []model.Reminder) (map[string]int, map[string]map[string]int) {
	counts := make(map[string]int)
	categories := make(map[string]map[string]int)
	for i := range reminders {
		day := model.FormatDate(reminders[i].Date)
		counts[day]++

		category := reminders[i].Category
		if category == "" {
			category = UncategorizedBucket
		}
		if categories[day] == nil {
			categories[day] = make(map[string]int)
		}
		categories[day][category]++
	}
	return counts, categories
}

// Summarize describes rule with an empty date list.
func Summarize(rule *model.ReminderRule) RuleSummary {
	interval := rule.Interval
	if interval < 1 {
		interval = 1
	}
	return RuleSummary{
		ID:          rule.ID,
		Title:       rule.Title,
		Description: rule.Description,
		Creator:     rule.Creator,
		Interval:    interval,
		Unit:        rule.Unit,
		Time:        optional(rule.Time),
		Category:    optional(rule.Category),
		Color:       optional(rule.Color),
		StartDate:   model.FormatDate(rule.StartDate),
		EndDate:     model.FormatOptionalDate(rule.EndDate),
		Dates:       []string{},
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
