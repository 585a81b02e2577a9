package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Reminders and reminder rules",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS reminder_rules (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					title TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					creator TEXT NOT NULL DEFAULT '',
					time TEXT NOT NULL DEFAULT '',
					category TEXT NOT NULL DEFAULT '',
					color TEXT NOT NULL DEFAULT '',
					unit TEXT NOT NULL,
					interval INTEGER NOT NULL DEFAULT 1,
					start_date TEXT NOT NULL,
					end_date TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_reminder_rules_start ON reminder_rules(start_date)`,

				`CREATE TABLE IF NOT EXISTS reminders (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					date TEXT NOT NULL,
					time TEXT NOT NULL DEFAULT '',
					title TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					creator TEXT NOT NULL DEFAULT '',
					category TEXT NOT NULL DEFAULT '',
					color TEXT NOT NULL DEFAULT '',
					recurring_id INTEGER,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME
				)`,
				`CREATE INDEX idx_reminders_date ON reminders(date)`,
				`CREATE INDEX idx_reminders_recurring ON reminders(recurring_id)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Expense ledger, expense rules and settings",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS expense_rules (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					title TEXT NOT NULL,
					category TEXT NOT NULL DEFAULT '',
					creator TEXT NOT NULL DEFAULT '',
					unit_price TEXT NOT NULL DEFAULT '0',
					default_quantity TEXT NOT NULL DEFAULT '1',
					frequency TEXT NOT NULL,
					monthly_mode TEXT NOT NULL DEFAULT 'day_of_month',
					start_date TEXT NOT NULL,
					end_date TEXT,
					last_generated_date TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS expense_entries (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					date TEXT NOT NULL,
					title TEXT NOT NULL,
					category TEXT NOT NULL DEFAULT '',
					unit_price TEXT,
					quantity TEXT,
					amount TEXT NOT NULL,
					payer TEXT NOT NULL DEFAULT '',
					recurring_id INTEGER,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_expense_entries_date ON expense_entries(date)`,

				`CREATE TABLE IF NOT EXISTS settings (
					key TEXT PRIMARY KEY,
					value TEXT NOT NULL
				)`,
			)
		},
	},
	{
		Version:     3,
		Description: "One generated ledger row per rule and date",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				// Databases written before this index may hold duplicates from
				// concurrent sweeps; keep the oldest row of each pair.
				`DELETE FROM expense_entries
				WHERE recurring_id IS NOT NULL
				AND id NOT IN (
					SELECT MIN(id) FROM expense_entries
					WHERE recurring_id IS NOT NULL
					GROUP BY recurring_id, date
				)`,
				`CREATE UNIQUE INDEX idx_expense_entries_rule_date ON expense_entries(recurring_id, date)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// SchemaVersion returns the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
