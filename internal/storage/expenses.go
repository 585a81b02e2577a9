package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/homehub/internal/common"
	"github.com/Veraticus/homehub/internal/model"
)

const expenseEntryColumns = `id, date, title, category, unit_price, quantity, amount, payer,
	recurring_id, created_at`

// ListExpenseEntries returns ledger rows dated within [start, end] in date and
// creation order.
func (q *queries) ListExpenseEntries(ctx context.Context, start, end time.Time) ([]model.ExpenseEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT `+expenseEntryColumns+`
		FROM expense_entries
		WHERE date >= ? AND date <= ?
		ORDER BY date, id
	`, dateArg(start), dateArg(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query expense entries: %w", err)
	}
	entries, err := collectExpenseEntries(rows)
	if err != nil {
		return nil, err
	}

	slog.Debug("retrieved expense entries", "count", len(entries), "start", dateArg(start), "end", dateArg(end))
	return entries, nil
}

// ListRuleEntries returns every ledger row generated from a rule.
func (q *queries) ListRuleEntries(ctx context.Context, ruleID int64) ([]model.ExpenseEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(ruleID, "expense rule"); err != nil {
		return nil, err
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT `+expenseEntryColumns+`
		FROM expense_entries
		WHERE recurring_id = ?
		ORDER BY date, id
	`, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rule entries: %w", err)
	}
	return collectExpenseEntries(rows)
}

// GetExpenseEntry retrieves a ledger row by id.
func (q *queries) GetExpenseEntry(ctx context.Context, id int64) (*model.ExpenseEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "expense entry"); err != nil {
		return nil, err
	}

	row := q.db.QueryRowContext(ctx, `SELECT `+expenseEntryColumns+` FROM expense_entries WHERE id = ?`, id)
	entry, err := scanExpenseEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("expense entry", id)
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// CreateExpenseEntry inserts a manual ledger row and sets its ID.
func (q *queries) CreateExpenseEntry(ctx context.Context, entry *model.ExpenseEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateNotNil(entry == nil, "expense entry"); err != nil {
		return err
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	result, err := q.db.ExecContext(ctx, `
		INSERT INTO expense_entries (date, title, category, unit_price, quantity, amount, payer, recurring_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, dateArg(entry.Date), entry.Title, entry.Category, entry.UnitPrice, entry.Quantity,
		entry.Amount, entry.Payer, nullInt64Arg(entry.RecurringID))
	if err != nil {
		return fmt.Errorf("failed to create expense entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get expense entry ID: %w", err)
	}
	entry.ID = id

	slog.Info("created expense entry", "id", id, "date", dateArg(entry.Date), "amount", entry.Amount.String())
	return nil
}

// InsertGeneratedEntry stores a rule-generated row. A row that already exists
// for the same rule and date is left untouched and reported as not inserted.
func (q *queries) InsertGeneratedEntry(ctx context.Context, entry *model.ExpenseEntry) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateNotNil(entry == nil, "expense entry"); err != nil {
		return false, err
	}
	if err := validateNotNil(entry.RecurringID == nil, "recurring_id"); err != nil {
		return false, err
	}
	if err := entry.Validate(); err != nil {
		return false, err
	}

	result, err := q.db.ExecContext(ctx, `
		INSERT INTO expense_entries (date, title, category, unit_price, quantity, amount, payer, recurring_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(recurring_id, date) DO NOTHING
	`, dateArg(entry.Date), entry.Title, entry.Category, entry.UnitPrice, entry.Quantity,
		entry.Amount, entry.Payer, *entry.RecurringID)
	if err != nil {
		return false, fmt.Errorf("failed to insert generated expense entry: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to get expense entry ID: %w", err)
	}
	entry.ID = id
	return true, nil
}

// UpdateExpenseEntry overwrites the mutable fields of a ledger row.
func (q *queries) UpdateExpenseEntry(ctx context.Context, entry *model.ExpenseEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateNotNil(entry == nil, "expense entry"); err != nil {
		return err
	}
	if err := validateID(entry.ID, "expense entry"); err != nil {
		return err
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	result, err := q.db.ExecContext(ctx, `
		UPDATE expense_entries
		SET date = ?, title = ?, category = ?, unit_price = ?, quantity = ?, amount = ?, payer = ?
		WHERE id = ?
	`, dateArg(entry.Date), entry.Title, entry.Category, entry.UnitPrice, entry.Quantity,
		entry.Amount, entry.Payer, entry.ID)
	if err != nil {
		return fmt.Errorf("failed to update expense entry: %w", err)
	}
	return requireAffected(result, "expense entry", entry.ID)
}

// DeleteExpenseEntry removes a ledger row.
func (q *queries) DeleteExpenseEntry(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "expense entry"); err != nil {
		return err
	}

	result, err := q.db.ExecContext(ctx, `DELETE FROM expense_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense entry: %w", err)
	}
	if err := requireAffected(result, "expense entry", id); err != nil {
		return err
	}

	slog.Info("deleted expense entry", "id", id)
	return nil
}

// PruneRuleEntries deletes a rule's rows dated outside [start, end]. A nil
// end leaves the upper side open.
func (q *queries) PruneRuleEntries(ctx context.Context, ruleID int64, start time.Time, end *time.Time) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateID(ruleID, "expense rule"); err != nil {
		return 0, err
	}

	result, err := q.db.ExecContext(ctx, `
		DELETE FROM expense_entries
		WHERE recurring_id = ?
		AND (date < ? OR (? IS NOT NULL AND date > ?))
	`, ruleID, dateArg(start), nullDateArg(end), nullDateArg(end))
	if err != nil {
		return 0, fmt.Errorf("failed to prune rule entries: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		slog.Info("pruned expense entries outside rule bounds", "rule_id", ruleID, "deleted", n)
	}
	return n, nil
}

// DeleteRuleEntries deletes every row generated from a rule.
func (q *queries) DeleteRuleEntries(ctx context.Context, ruleID int64) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateID(ruleID, "expense rule"); err != nil {
		return 0, err
	}

	result, err := q.db.ExecContext(ctx, `DELETE FROM expense_entries WHERE recurring_id = ?`, ruleID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete rule entries: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	slog.Info("deleted expense entries for rule", "rule_id", ruleID, "deleted", n)
	return n, nil
}

func collectExpenseEntries(rows *sql.Rows) ([]model.ExpenseEntry, error) {
	defer func() { _ = rows.Close() }()

	var entries []model.ExpenseEntry
	for rows.Next() {
		entry, err := scanExpenseEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense entries: %w", err)
	}
	return entries, nil
}

func scanExpenseEntry(row rowScanner) (*model.ExpenseEntry, error) {
	var (
		entry       model.ExpenseEntry
		date        string
		recurringID sql.NullInt64
		createdAt   sql.NullTime
	)
	err := row.Scan(&entry.ID, &date, &entry.Title, &entry.Category, &entry.UnitPrice, &entry.Quantity,
		&entry.Amount, &entry.Payer, &recurringID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense entry: %w", err)
	}

	if entry.Date, err = parseStoredDate(date); err != nil {
		return nil, err
	}
	entry.RecurringID = int64Ptr(recurringID)
	if createdAt.Valid {
		entry.CreatedAt = createdAt.Time
	}
	return &entry, nil
}
