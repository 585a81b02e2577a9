// Package storage provides the SQLite persistence layer for the hub.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/homehub/internal/common"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidID        = errors.New("id must be positive")
	ErrInvalidDateRange = errors.New("start date must not be after end date")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID rejects zero and negative ids, which never name a stored row.
func validateID(id int64, kind string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s %d: %w", ErrInvalidID, kind, id, common.ErrInvalidInput)
	}
	return nil
}

// validateDateRange ensures start is not after end.
func validateDateRange(start, end time.Time) error {
	if start.After(end) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidDateRange, dateArg(start), dateArg(end))
	}
	return nil
}

// validateNotNil guards pointer parameters.
func validateNotNil(isNil bool, paramName string) error {
	if isNil {
		return fmt.Errorf("%w: %s", ErrNilParameter, paramName)
	}
	return nil
}
