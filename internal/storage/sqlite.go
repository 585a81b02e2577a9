package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/homehub/internal/common"
	"github.com/Veraticus/homehub/internal/model"
	"github.com/Veraticus/homehub/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements service.Store against a connection or a transaction.
type queries struct {
	db dbtx
}

var _ service.Store = (*queries)(nil)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	*queries
	db     *sql.DB
	dbPath string
	retry  common.RetryOptions
}

var _ service.Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		queries: &queries{db: db},
		db:      db,
		dbPath:  dbPath,
		retry:   common.DefaultRetryOptions(),
	}, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// WithTx runs fn inside a single transaction, retrying the whole unit when
// SQLite reports the database as busy.
func (s *SQLiteStorage) WithTx(ctx context.Context, fn func(service.Store) error) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return common.WithRetry(ctx, func() error {
		return s.runTx(ctx, fn)
	}, s.retry)
}

func (s *SQLiteStorage) runTx(ctx context.Context, fn func(service.Store) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.ClassifyBusy(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&queries{db: tx}); err != nil {
		return common.ClassifyBusy(err)
	}
	if err = tx.Commit(); err != nil {
		return common.ClassifyBusy(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

func dateArg(t time.Time) string {
	return model.FormatDate(t)
}

func nullDateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return model.FormatDate(*t)
}

func parseStoredDate(raw string) (time.Time, error) {
	d, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("stored date %q is malformed: %w", raw, err)
	}
	return d, nil
}

func parseStoredNullDate(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	d, err := parseStoredDate(raw.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nullInt64Arg(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
