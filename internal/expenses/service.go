// Package expenses maintains the household expense ledger: rule-driven
// generation of ledger rows, rule and entry edits, month summaries and the
// expense settings.
package expenses

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/homehub/internal/access"
	"github.com/Veraticus/homehub/internal/common"
	"github.com/Veraticus/homehub/internal/model"
	"github.com/Veraticus/homehub/internal/recurrence"
	"github.com/Veraticus/homehub/internal/service"
)

// Service implements the expense operations over a Storage.
type Service struct {
	store    service.Storage
	now      func() time.Time
	policy   access.Policy
	currency string
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for "today" defaults.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithDefaultCurrency overrides the currency shown when none is stored.
func WithDefaultCurrency(currency string) Option {
	return func(s *Service) {
		if currency = strings.TrimSpace(currency); currency != "" {
			s.currency = currency
		}
	}
}

// NewService creates an expense service.
func NewService(store service.Storage, policy access.Policy, opts ...Option) *Service {
	s := &Service{
		store:    store,
		policy:   policy,
		now:      time.Now,
		currency: model.DefaultCurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the current calendar date according to the service clock.
func (s *Service) Today() time.Time {
	return recurrence.Day(s.now())
}

func parseMoney(raw, field string) (decimal.Decimal, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, common.Invalid(field, "must be a number")
	}
	return d, true, nil
}

func parseDateOr(raw, field string, fallback time.Time) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return time.Time{}, common.Invalid(field, "must be YYYY-MM-DD")
	}
	return d, nil
}
