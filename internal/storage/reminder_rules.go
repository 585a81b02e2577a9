package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/homehub/internal/common"
	"github.com/Veraticus/homehub/internal/model"
	"github.com/Veraticus/homehub/internal/recurrence"
)

const reminderRuleColumns = `id, title, description, creator, time, category, color,
	unit, interval, start_date, end_date, created_at`

// ListReminderRules returns every reminder rule, oldest first.
func (q *queries) ListReminderRules(ctx context.Context) ([]model.ReminderRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := q.db.QueryContext(ctx, `SELECT `+reminderRuleColumns+` FROM reminder_rules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminder rules: %w", err)
	}
	return collectReminderRules(rows)
}

// GetReminderRule retrieves a reminder rule by id.
func (q *queries) GetReminderRule(ctx context.Context, id int64) (*model.ReminderRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "reminder rule"); err != nil {
		return nil, err
	}

	row := q.db.QueryRowContext(ctx, `SELECT `+reminderRuleColumns+` FROM reminder_rules WHERE id = ?`, id)
	rule, err := scanReminderRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("reminder rule", id)
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// CreateReminderRule inserts a rule and sets its ID.
func (q *queries) CreateReminderRule(ctx context.Context, rule *model.ReminderRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateNotNil(rule == nil, "reminder rule"); err != nil {
		return err
	}
	if err := rule.Validate(); err != nil {
		return err
	}

	result, err := q.db.ExecContext(ctx, `
		INSERT INTO reminder_rules (title, description, creator, time, category, color, unit, interval, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rule.Title, rule.Description, rule.Creator, rule.Time, rule.Category, rule.Color,
		string(rule.Unit), rule.Interval, dateArg(rule.StartDate), nullDateArg(rule.EndDate))
	if err != nil {
		return fmt.Errorf("failed to create reminder rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get reminder rule ID: %w", err)
	}
	rule.ID = id

	slog.Info("created reminder rule", "id", id, "unit", rule.Unit, "interval", rule.Interval,
		"start_date", dateArg(rule.StartDate))
	return nil
}

// UpdateReminderRule overwrites the mutable fields of a rule.
func (q *queries) UpdateReminderRule(ctx context.Context, rule *model.ReminderRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateNotNil(rule == nil, "reminder rule"); err != nil {
		return err
	}
	if err := validateID(rule.ID, "reminder rule"); err != nil {
		return err
	}
	if err := rule.Validate(); err != nil {
		return err
	}

	result, err := q.db.ExecContext(ctx, `
		UPDATE reminder_rules
		SET title = ?, description = ?, time = ?, category = ?, color = ?,
			unit = ?, interval = ?, start_date = ?, end_date = ?
		WHERE id = ?
	`, rule.Title, rule.Description, rule.Time, rule.Category, rule.Color,
		string(rule.Unit), rule.Interval, dateArg(rule.StartDate), nullDateArg(rule.EndDate), rule.ID)
	if err != nil {
		return fmt.Errorf("failed to update reminder rule: %w", err)
	}
	return requireAffected(result, "reminder rule", rule.ID)
}

// DeleteReminderRule removes a rule. Reminders that were saved as exceptions
// to it keep their recurring_id.
func (q *queries) DeleteReminderRule(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "reminder rule"); err != nil {
		return err
	}

	result, err := q.db.ExecContext(ctx, `DELETE FROM reminder_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder rule: %w", err)
	}
	if err := requireAffected(result, "reminder rule", id); err != nil {
		return err
	}

	slog.Info("deleted reminder rule", "id", id)
	return nil
}

func collectReminderRules(rows *sql.Rows) ([]model.ReminderRule, error) {
	defer func() { _ = rows.Close() }()

	var rules []model.ReminderRule
	for rows.Next() {
		rule, err := scanReminderRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminder rules: %w", err)
	}
	return rules, nil
}

func scanReminderRule(row rowScanner) (*model.ReminderRule, error) {
	var (
		rule      model.ReminderRule
		unit      string
		start     string
		end       sql.NullString
		createdAt sql.NullTime
	)
	err := row.Scan(&rule.ID, &rule.Title, &rule.Description, &rule.Creator, &rule.Time,
		&rule.Category, &rule.Color, &unit, &rule.Interval, &start, &end, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan reminder rule: %w", err)
	}

	// Stored units are not re-validated; the generator degrades unknown ones.
	rule.Unit = recurrence.Unit(unit)
	if rule.StartDate, err = parseStoredDate(start); err != nil {
		return nil, err
	}
	if rule.EndDate, err = parseStoredNullDate(end); err != nil {
		return nil, err
	}
	if createdAt.Valid {
		rule.CreatedAt = createdAt.Time
	}
	return &rule, nil
}
