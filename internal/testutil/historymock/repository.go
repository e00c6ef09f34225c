package historymock

import (
	"context"

	domain "pocketcredit-backend/internal/domain/history"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn              func(ctx context.Context, e *domain.Event) error
	ListByApplicationIDFn func(ctx context.Context, applicationID uint64) ([]domain.Event, error)
}

func (m *Repo) Create(ctx context.Context, e *domain.Event) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, e)
	}
	return nil
}

func (m *Repo) ListByApplicationID(ctx context.Context, applicationID uint64) ([]domain.Event, error) {
	if m.ListByApplicationIDFn != nil {
		return m.ListByApplicationIDFn(ctx, applicationID)
	}
	return nil, nil
}
