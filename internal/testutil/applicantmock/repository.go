package applicantmock

import (
	"context"

	domain "pocketcredit-backend/internal/domain/applicant"
)

var (
	_ domain.Repository         = (*Repo)(nil)
	_ domain.DocumentRepository = (*DocumentRepo)(nil)
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset getters report domain.ErrNotFound; unset writers succeed.
type Repo struct {
	CreateFn               func(ctx context.Context, a *domain.Applicant) error
	GetByUserIDFn          func(ctx context.Context, userID string) (*domain.Applicant, error)
	GetByUserIDForUpdateFn func(ctx context.Context, userID string) (*domain.Applicant, error)
	SaveFn                 func(ctx context.Context, a *domain.Applicant) error
}

func (m *Repo) Create(ctx context.Context, a *domain.Applicant) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByUserID(ctx context.Context, userID string) (*domain.Applicant, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByUserIDForUpdate(ctx context.Context, userID string) (*domain.Applicant, error) {
	if m.GetByUserIDForUpdateFn != nil {
		return m.GetByUserIDForUpdateFn(ctx, userID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Save(ctx context.Context, a *domain.Applicant) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

// DocumentRepo is a function-backed mock that satisfies domain.DocumentRepository.
type DocumentRepo struct {
	CreateFn          func(ctx context.Context, d *domain.Document) error
	GetByDocumentIDFn func(ctx context.Context, documentID string) (*domain.Document, error)
	ListByUserIDFn    func(ctx context.Context, userID string) ([]domain.Document, error)
	SaveFn            func(ctx context.Context, d *domain.Document) error
}

func (m *DocumentRepo) Create(ctx context.Context, d *domain.Document) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *DocumentRepo) GetByDocumentID(ctx context.Context, documentID string) (*domain.Document, error) {
	if m.GetByDocumentIDFn != nil {
		return m.GetByDocumentIDFn(ctx, documentID)
	}
	return nil, domain.ErrNotFound
}

func (m *DocumentRepo) ListByUserID(ctx context.Context, userID string) ([]domain.Document, error) {
	if m.ListByUserIDFn != nil {
		return m.ListByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *DocumentRepo) Save(ctx context.Context, d *domain.Document) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, d)
	}
	return nil
}
