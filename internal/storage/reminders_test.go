package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/homehub/internal/common"
	"github.com/Veraticus/homehub/internal/model"
	"github.com/Veraticus/homehub/internal/recurrence"
)

func TestReminderStorage(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	oct3 := recurrence.Date(2025, time.October, 3)

	t.Run("CreateAndGet", func(t *testing.T) {
		r := &model.Reminder{Title: "Dentist", Date: oct3, Time: "09:30", Creator: "sam", Category: "health"}
		if err := store.CreateReminder(ctx, r); err != nil {
			t.Fatalf("CreateReminder() error = %v", err)
		}
		if r.ID == 0 {
			t.Fatal("CreateReminder() did not set ID")
		}

		got, err := store.GetReminder(ctx, r.ID)
		if err != nil {
			t.Fatalf("GetReminder() error = %v", err)
		}
		if got.Title != "Dentist" || got.Time != "09:30" || !got.Date.Equal(oct3) {
			t.Errorf("GetReminder() = %+v", got)
		}
		if got.RecurringID != nil {
			t.Errorf("RecurringID = %v, want nil", *got.RecurringID)
		}
		if got.CreatedAt.IsZero() {
			t.Error("CreatedAt not populated")
		}
		if got.UpdatedAt != nil {
			t.Error("UpdatedAt set on a fresh reminder")
		}
	})

	t.Run("ValidationError", func(t *testing.T) {
		err := store.CreateReminder(ctx, &model.Reminder{Date: oct3})
		var verr *common.ValidationError
		if !errors.As(err, &verr) || verr.Field != "title" {
			t.Errorf("CreateReminder() error = %v, want title validation error", err)
		}
	})

	t.Run("ListWindow", func(t *testing.T) {
		for _, d := range []time.Time{oct3.AddDate(0, 0, -3), oct3.AddDate(0, 0, 1), oct3.AddDate(0, 0, 30)} {
			if err := store.CreateReminder(ctx, &model.Reminder{Title: "x", Date: d}); err != nil {
				t.Fatalf("CreateReminder() error = %v", err)
			}
		}

		got, err := store.ListReminders(ctx, oct3, oct3.AddDate(0, 0, 6))
		if err != nil {
			t.Fatalf("ListReminders() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("ListReminders() returned %d rows, want 2", len(got))
		}
		if !got[0].Date.Equal(oct3) || !got[1].Date.Equal(oct3.AddDate(0, 0, 1)) {
			t.Errorf("ListReminders() order = %v, %v", got[0].Date, got[1].Date)
		}
	})

	t.Run("Update", func(t *testing.T) {
		r := &model.Reminder{Title: "Call mum", Date: oct3, Creator: "sam"}
		if err := store.CreateReminder(ctx, r); err != nil {
			t.Fatalf("CreateReminder() error = %v", err)
		}
		r.Title = "Call mum back"
		r.Time = ""
		r.Creator = "someone else"
		if err := store.UpdateReminder(ctx, r); err != nil {
			t.Fatalf("UpdateReminder() error = %v", err)
		}

		got, err := store.GetReminder(ctx, r.ID)
		if err != nil {
			t.Fatalf("GetReminder() error = %v", err)
		}
		if got.Title != "Call mum back" {
			t.Errorf("Title = %q", got.Title)
		}
		if got.Creator != "sam" {
			t.Errorf("Creator = %q, update must not change the creator", got.Creator)
		}
		if got.UpdatedAt == nil {
			t.Error("UpdatedAt not stamped")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		r := &model.Reminder{Title: "Gone", Date: oct3}
		if err := store.CreateReminder(ctx, r); err != nil {
			t.Fatalf("CreateReminder() error = %v", err)
		}
		if err := store.DeleteReminder(ctx, r.ID); err != nil {
			t.Fatalf("DeleteReminder() error = %v", err)
		}
		if _, err := store.GetReminder(ctx, r.ID); !errors.Is(err, common.ErrNotFound) {
			t.Errorf("GetReminder() after delete error = %v, want ErrNotFound", err)
		}
	})
}

func TestReminderRuleStorage(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	end := recurrence.Date(2025, time.October, 12)
	rule := &model.ReminderRule{
		Title:     "Vitamins",
		Creator:   "sam",
		Time:      "08:00",
		Unit:      recurrence.UnitDay,
		Interval:  1,
		StartDate: recurrence.Date(2025, time.October, 10),
		EndDate:   &end,
	}
	if err := store.CreateReminderRule(ctx, rule); err != nil {
		t.Fatalf("CreateReminderRule() error = %v", err)
	}

	weekly := &model.ReminderRule{
		Title:     "Bins",
		Unit:      recurrence.UnitWeek,
		Interval:  1,
		StartDate: recurrence.Date(2025, time.November, 3),
	}
	if err := store.CreateReminderRule(ctx, weekly); err != nil {
		t.Fatalf("CreateReminderRule() error = %v", err)
	}

	t.Run("Get", func(t *testing.T) {
		got, err := store.GetReminderRule(ctx, rule.ID)
		if err != nil {
			t.Fatalf("GetReminderRule() error = %v", err)
		}
		if got.Unit != recurrence.UnitDay || got.Interval != 1 || got.EndDate == nil || !got.EndDate.Equal(end) {
			t.Errorf("GetReminderRule() = %+v", got)
		}
	})

	t.Run("Update", func(t *testing.T) {
		rule.Interval = 3
		rule.EndDate = nil
		if err := store.UpdateReminderRule(ctx, rule); err != nil {
			t.Fatalf("UpdateReminderRule() error = %v", err)
		}
		got, err := store.GetReminderRule(ctx, rule.ID)
		if err != nil {
			t.Fatalf("GetReminderRule() error = %v", err)
		}
		if got.Interval != 3 || got.EndDate != nil {
			t.Errorf("after update = %+v", got)
		}
	})

	t.Run("InvalidRule", func(t *testing.T) {
		bad := *rule
		bad.Unit = "fortnight"
		if err := store.UpdateReminderRule(ctx, &bad); !errors.Is(err, common.ErrInvalidInput) {
			t.Errorf("UpdateReminderRule() error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("ListAndDelete", func(t *testing.T) {
		if err := store.DeleteReminderRule(ctx, weekly.ID); err != nil {
			t.Fatalf("DeleteReminderRule() error = %v", err)
		}
		rules, err := store.ListReminderRules(ctx)
		if err != nil {
			t.Fatalf("ListReminderRules() error = %v", err)
		}
		if len(rules) != 1 || rules[0].ID != rule.ID {
			t.Errorf("ListReminderRules() = %+v", rules)
		}
	})
}
