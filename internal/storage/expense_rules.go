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
	"github.com/Veraticus/homehub/internal/recurrence"
)

const expenseRuleColumns = `id, title, category, creator, unit_price, default_quantity, frequency,
	monthly_mode, start_date, end_date, last_generated_date, created_at`

// ListExpenseRules returns every expense rule, newest first.
func (q *queries) ListExpenseRules(ctx context.Context) ([]model.ExpenseRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := q.db.QueryContext(ctx, `SELECT `+expenseRuleColumns+` FROM expense_rules ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.ExpenseRule
	for rows.Next() {
		rule, err := scanExpenseRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense rules: %w", err)
	}

	slog.Debug("retrieved expense rules", "count", len(rules))
	return rules, nil
}

// GetExpenseRule retrieves an expense rule by id.
func (q *queries) GetExpenseRule(ctx context.Context, id int64) (*model.ExpenseRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "expense rule"); err != nil {
		return nil, err
	}

	row := q.db.QueryRowContext(ctx, `SELECT `+expenseRuleColumns+` FROM expense_rules WHERE id = ?`, id)
	rule, err := scanExpenseRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("expense rule", id)
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// CreateExpenseRule inserts a rule and sets its ID.
func (q *queries) CreateExpenseRule(ctx context.Context, rule *model.ExpenseRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateNotNil(rule == nil, "expense rule"); err != nil {
		return err
	}
	if err := rule.Validate(); err != nil {
		return err
	}

	result, err := q.db.ExecContext(ctx, `
		INSERT INTO expense_rules (title, category, creator, unit_price, default_quantity, frequency,
			monthly_mode, start_date, end_date, last_generated_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rule.Title, rule.Category, rule.Creator, rule.UnitPrice, rule.Quantity(), rule.Frequency,
		string(rule.MonthlyMode), dateArg(rule.StartDate), nullDateArg(rule.EndDate), nullDateArg(rule.LastGeneratedDate))
	if err != nil {
		return fmt.Errorf("failed to create expense rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get expense rule ID: %w", err)
	}
	rule.ID = id

	slog.Info("created expense rule", "id", id, "frequency", rule.Frequency, "start_date", dateArg(rule.StartDate))
	return nil
}

// UpdateExpenseRule overwrites the definition of a rule. The checkpoint is
// written separately by SetExpenseRuleCheckpoint.
func (q *queries) UpdateExpenseRule(ctx context.Context, rule *model.ExpenseRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateNotNil(rule == nil, "expense rule"); err != nil {
		return err
	}
	if err := validateID(rule.ID, "expense rule"); err != nil {
		return err
	}
	if err := rule.Validate(); err != nil {
		return err
	}

	result, err := q.db.ExecContext(ctx, `
		UPDATE expense_rules
		SET title = ?, category = ?, unit_price = ?, default_quantity = ?, frequency = ?,
			monthly_mode = ?, start_date = ?, end_date = ?
		WHERE id = ?
	`, rule.Title, rule.Category, rule.UnitPrice, rule.Quantity(), rule.Frequency,
		string(rule.MonthlyMode), dateArg(rule.StartDate), nullDateArg(rule.EndDate), rule.ID)
	if err != nil {
		return fmt.Errorf("failed to update expense rule: %w", err)
	}
	return requireAffected(result, "expense rule", rule.ID)
}

// DeleteExpenseRule removes a rule. Its ledger rows are left in place.
func (q *queries) DeleteExpenseRule(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "expense rule"); err != nil {
		return err
	}

	result, err := q.db.ExecContext(ctx, `DELETE FROM expense_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense rule: %w", err)
	}
	if err := requireAffected(result, "expense rule", id); err != nil {
		return err
	}

	slog.Info("deleted expense rule", "id", id)
	return nil
}

// SetExpenseRuleCheckpoint records the last date the sweep generated.
func (q *queries) SetExpenseRuleCheckpoint(ctx context.Context, id int64, generated time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "expense rule"); err != nil {
		return err
	}

	result, err := q.db.ExecContext(ctx, `UPDATE expense_rules SET last_generated_date = ? WHERE id = ?`,
		dateArg(generated), id)
	if err != nil {
		return fmt.Errorf("failed to update expense rule checkpoint: %w", err)
	}
	return requireAffected(result, "expense rule", id)
}

func scanExpenseRule(row rowScanner) (*model.ExpenseRule, error) {
	var (
		rule      model.ExpenseRule
		mode      string
		start     string
		end       sql.NullString
		generated sql.NullString
		createdAt sql.NullTime
	)
	err := row.Scan(&rule.ID, &rule.Title, &rule.Category, &rule.Creator, &rule.UnitPrice,
		&rule.DefaultQuantity, &rule.Frequency, &mode, &start, &end, &generated, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense rule: %w", err)
	}

	rule.MonthlyMode = recurrence.MonthlyMode(mode)
	if rule.StartDate, err = parseStoredDate(start); err != nil {
		return nil, err
	}
	if rule.EndDate, err = parseStoredNullDate(end); err != nil {
		return nil, err
	}
	if rule.LastGeneratedDate, err = parseStoredNullDate(generated); err != nil {
		return nil, err
	}
	if createdAt.Valid {
		rule.CreatedAt = createdAt.Time
	}
	return &rule, nil
}
