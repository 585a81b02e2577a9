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

const reminderColumns = `id, date, time, title, description, creator, category, color,
	recurring_id, created_at, updated_at`

// ListReminders returns persisted reminders dated within [start, end].
func (q *queries) ListReminders(ctx context.Context, start, end time.Time) ([]model.Reminder, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE date >= ? AND date <= ?
		ORDER BY date, id
	`, dateArg(start), dateArg(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reminders []model.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminders: %w", err)
	}

	slog.Debug("retrieved reminders", "count", len(reminders), "start", dateArg(start), "end", dateArg(end))
	return reminders, nil
}

// GetReminder retrieves a reminder by id.
func (q *queries) GetReminder(ctx context.Context, id int64) (*model.Reminder, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "reminder"); err != nil {
		return nil, err
	}

	row := q.db.QueryRowContext(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE id = ?`, id)
	r, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("reminder", id)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CreateReminder inserts a reminder and sets its ID.
func (q *queries) CreateReminder(ctx context.Context, r *model.Reminder) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateNotNil(r == nil, "reminder"); err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return err
	}

	result, err := q.db.ExecContext(ctx, `
		INSERT INTO reminders (date, time, title, description, creator, category, color, recurring_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, dateArg(r.Date), r.Time, r.Title, r.Description, r.Creator, r.Category, r.Color, nullInt64Arg(r.RecurringID))
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get reminder ID: %w", err)
	}
	r.ID = id
	r.Synthetic = false

	slog.Info("created reminder", "id", id, "date", dateArg(r.Date), "creator", r.Creator)
	return nil
}

// UpdateReminder overwrites the mutable fields of a reminder and stamps updated_at.
func (q *queries) UpdateReminder(ctx context.Context, r *model.Reminder) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateNotNil(r == nil, "reminder"); err != nil {
		return err
	}
	if err := validateID(r.ID, "reminder"); err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := q.db.ExecContext(ctx, `
		UPDATE reminders
		SET date = ?, time = ?, title = ?, description = ?, category = ?, color = ?, updated_at = ?
		WHERE id = ?
	`, dateArg(r.Date), r.Time, r.Title, r.Description, r.Category, r.Color, now, r.ID)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	if err := requireAffected(result, "reminder", r.ID); err != nil {
		return err
	}
	r.UpdatedAt = &now
	return nil
}

// DeleteReminder removes a reminder.
func (q *queries) DeleteReminder(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "reminder"); err != nil {
		return err
	}

	result, err := q.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	if err := requireAffected(result, "reminder", id); err != nil {
		return err
	}

	slog.Info("deleted reminder", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (*model.Reminder, error) {
	var (
		r           model.Reminder
		date        string
		recurringID sql.NullInt64
		createdAt   sql.NullTime
		updatedAt   sql.NullTime
	)
	err := row.Scan(&r.ID, &date, &r.Time, &r.Title, &r.Description, &r.Creator,
		&r.Category, &r.Color, &recurringID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan reminder: %w", err)
	}

	if r.Date, err = parseStoredDate(date); err != nil {
		return nil, err
	}
	r.RecurringID = int64Ptr(recurringID)
	if createdAt.Valid {
		r.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		r.UpdatedAt = &t
	}
	return &r, nil
}

func requireAffected(result sql.Result, kind string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.NotFound(kind, id)
	}
	return nil
}
