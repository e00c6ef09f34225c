package applicant

import "context"

type Repository interface {
	Create(ctx context.Context, a *Applicant) error
	GetByUserID(ctx context.Context, userID string) (*Applicant, error)
	// Row-locks the profile until the surrounding transaction ends.
	GetByUserIDForUpdate(ctx context.Context, userID string) (*Applicant, error)
	Save(ctx context.Context, a *Applicant) error
}

type DocumentRepository interface {
	Create(ctx context.Context, d *Document) error
	GetByDocumentID(ctx context.Context, documentID string) (*Document, error)
	ListByUserID(ctx context.Context, userID string) ([]Document, error)
	Save(ctx context.Context, d *Document) error
}
