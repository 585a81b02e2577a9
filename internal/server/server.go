// Package server exposes the reminder and expense services as a JSON API over
// net/http.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/homehub/internal/expenses"
	"github.com/Veraticus/homehub/internal/recurrence"
	"github.com/Veraticus/homehub/internal/reminders"
)

// Server is the hub HTTP API.
type Server struct {
	reminders *reminders.Service
	expenses  *expenses.Service
	logger    *slog.Logger
	now       func() time.Time
	http      *http.Server
	bind      string
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock that supplies "today" to every request.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a server bound to bind.
func New(bind string, rem *reminders.Service, exp *expenses.Service, opts ...Option) *Server {
	s := &Server{
		reminders: rem,
		expenses:  exp,
		logger:    slog.Default(),
		now:       time.Now,
		bind:      strings.TrimSpace(bind),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routed API with its middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/reminders", s.handleListReminders)
	mux.HandleFunc("POST /api/reminders", s.handleCreateReminder)
	mux.HandleFunc("DELETE /api/reminders", s.handleDeleteReminders)
	mux.HandleFunc("PATCH /api/reminders/{id}", s.handleUpdateReminder)
	mux.HandleFunc("PATCH /api/reminders/rules/{id}", s.handleUpdateReminderRule)
	mux.HandleFunc("DELETE /api/reminders/rules/{id}", s.handleDeleteReminderRule)

	mux.HandleFunc("GET /api/expenses/month", s.handleExpenseMonth)
	mux.HandleFunc("POST /api/expenses/entries", s.handleCreateExpense)
	mux.HandleFunc("PATCH /api/expenses/entries/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/entries/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /api/expenses/rules", s.handleListExpenseRules)
	mux.HandleFunc("POST /api/expenses/rules", s.handleCreateExpenseRule)
	mux.HandleFunc("POST /api/expenses/rules/{id}/edit", s.handleEditExpenseRule)
	mux.HandleFunc("POST /api/expenses/rules/{id}/delete", s.handleDeleteExpenseRule)
	mux.HandleFunc("GET /api/expenses/settings", s.handleExpenseSettings)
	mux.HandleFunc("POST /api/expenses/settings", s.handleUpdateExpenseSettings)

	return s.withRequestID(s.withLogging(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("server bind address is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.bind, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(listener)
	}()
	s.logger.Info("hub api listening", "address", listener.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("hub api stopped")
	return nil
}

func (s *Server) today() time.Time {
	return recurrence.Day(s.now())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
