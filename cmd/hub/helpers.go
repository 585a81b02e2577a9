package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/homehub/internal/access"
	"github.com/Veraticus/homehub/internal/common"
	"github.com/Veraticus/homehub/internal/expenses"
	"github.com/Veraticus/homehub/internal/model"
	"github.com/Veraticus/homehub/internal/recurrence"
	"github.com/Veraticus/homehub/internal/reminders"
	"github.com/Veraticus/homehub/internal/storage"
)

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("cannot open database at %s", cfg.DatabasePath), err)
	}

	if err := store.Migrate(ctx); err != nil {
		closeStorage(store)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func closeStorage(store *storage.SQLiteStorage) {
	if err := store.Close(); err != nil {
		common.LogError(err, "failed to close storage", common.Fields{"path": store.Path()})
	}
}

func newServices(store *storage.SQLiteStorage) (*reminders.Service, *expenses.Service) {
	policy := access.NewPolicy(cfg.AdminName)
	return reminders.NewService(store, policy),
		expenses.NewService(store, policy, expenses.WithDefaultCurrency(cfg.Currency))
}

// currentUser is the name mutations are performed as.
func currentUser() string {
	for _, candidate := range []string{viper.GetString("user"), os.Getenv("USER")} {
		if u := strings.TrimSpace(candidate); u != "" {
			return u
		}
	}
	return ""
}

// referenceDate parses a --date flag, defaulting to today.
func referenceDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return recurrence.Day(time.Now()), nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return time.Time{}, common.NewUserError("dates must be YYYY-MM-DD", err)
	}
	return d, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
