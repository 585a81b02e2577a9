// Package reminders answers reminder window queries and applies reminder
// mutations. Rule occurrences are synthesized on read and never persisted.
package reminders

import (
	"github.com/Veraticus/homehub/internal/access"
	"github.com/Veraticus/homehub/internal/service"
)

// UncategorizedBucket collects month counts for reminders without a category.
const UncategorizedBucket = "_uncategorized"

// Service implements the reminder operations over a Storage.
type Service struct {
	store  service.Storage
	policy access.Policy
}

// NewService creates a reminder service.
func NewService(store service.Storage, policy access.Policy) *Service {
	return &Service{store: store, policy: policy}
}
