// Package service defines the persistence contracts the hub services depend on.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/homehub/internal/model"
)

// ReminderStore persists reminders and reminder rules.
type ReminderStore interface {
	// Reminder operations
	ListReminders(ctx context.Context, start, end time.Time) ([]model.Reminder, error)
	GetReminder(ctx context.Context, id int64) (*model.Reminder, error)
	CreateReminder(ctx context.Context, reminder *model.Reminder) error
	UpdateReminder(ctx context.Context, reminder *model.Reminder) error
	DeleteReminder(ctx context.Context, id int64) error

	// Rule operations
	ListReminderRules(ctx context.Context) ([]model.ReminderRule, error)
	GetReminderRule(ctx context.Context, id int64) (*model.ReminderRule, error)
	CreateReminderRule(ctx context.Context, rule *model.ReminderRule) error
	UpdateReminderRule(ctx context.Context, rule *model.ReminderRule) error
	DeleteReminderRule(ctx context.Context, id int64) error
}

// ExpenseStore persists the expense ledger and its rules.
type ExpenseStore interface {
	// Entry operations
	ListExpenseEntries(ctx context.Context, start, end time.Time) ([]model.ExpenseEntry, error)
	GetExpenseEntry(ctx context.Context, id int64) (*model.ExpenseEntry, error)
	CreateExpenseEntry(ctx context.Context, entry *model.ExpenseEntry) error
	UpdateExpenseEntry(ctx context.Context, entry *model.ExpenseEntry) error
	DeleteExpenseEntry(ctx context.Context, id int64) error

	// InsertGeneratedEntry stores a rule-generated row unless one already
	// exists for the same (recurring_id, date). It reports whether a row was
	// written.
	InsertGeneratedEntry(ctx context.Context, entry *model.ExpenseEntry) (bool, error)
	ListRuleEntries(ctx context.Context, ruleID int64) ([]model.ExpenseEntry, error)
	// PruneRuleEntries deletes a rule's rows dated before start or after end.
	PruneRuleEntries(ctx context.Context, ruleID int64, start time.Time, end *time.Time) (int64, error)
	DeleteRuleEntries(ctx context.Context, ruleID int64) (int64, error)

	// Rule operations
	ListExpenseRules(ctx context.Context) ([]model.ExpenseRule, error)
	GetExpenseRule(ctx context.Context, id int64) (*model.ExpenseRule, error)
	CreateExpenseRule(ctx context.Context, rule *model.ExpenseRule) error
	UpdateExpenseRule(ctx context.Context, rule *model.ExpenseRule) error
	DeleteExpenseRule(ctx context.Context, id int64) error
	SetExpenseRuleCheckpoint(ctx context.Context, id int64, generated time.Time) error
}

// SettingsStore is a flat key-value settings table.
type SettingsStore interface {
	GetSettings(ctx context.Context) (map[string]string, error)
	PutSetting(ctx context.Context, key, value string) error
}

// Store is the full set of data operations, usable inside or outside a
// transaction.
type Store interface {
	ReminderStore
	ExpenseStore
	SettingsStore
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	Store

	// WithTx runs fn inside one transaction. The transaction commits when fn
	// returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(Store) error) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
