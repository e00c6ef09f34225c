package history

import "context"

type Repository interface {
	// Append one event; events are never updated.
	Create(ctx context.Context, e *Event) error

	// Oldest first.
	ListByApplicationID(ctx context.Context, applicationID uint64) ([]Event, error)
}
