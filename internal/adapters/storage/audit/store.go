package audit

import (
	"context"

	domain "smartflex/internal/domain/audit"
)

// DefaultLimit caps List when the caller passes a non-positive limit.
const DefaultLimit = 100

// Store persists audit events.
type Store interface {
	// Save persists an audit event.
	// PRE: event passes Validate
	// POST: Event is persisted
	Save(ctx context.Context, event domain.Event) error

	// List returns matching events, newest first.
	List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error)
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Category   domain.Category
	Action     domain.Action
	ActorEmail string
	Branch     string
}

var _ Store = (*SQLiteStore)(nil)
