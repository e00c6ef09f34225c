package loan

import "context"

type ApplicationRepository interface {
	Create(ctx context.Context, a *Application) error
	GetByApplicationID(ctx context.Context, applicationID string) (*Application, error)
	// Row-locks the application until the surrounding transaction ends.
	GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*Application, error)
	// Newest first.
	ListByUserID(ctx context.Context, userID string) ([]Application, error)
	ListOpenByUserID(ctx context.Context, userID string) ([]Application, error)
	Save(ctx context.Context, a *Application) error
}

type LoanRepository interface {
	Create(ctx context.Context, l *Loan) error
	GetByApplicationID(ctx context.Context, applicationID uint64) (*Loan, error)
	ListByUserID(ctx context.Context, userID string) ([]Loan, error)
	Save(ctx context.Context, l *Loan) error
}

// TxnFilter selects a user's transactions. Empty Kind or Status matches any.
type TxnFilter struct {
	UserID string
	Kind   TxnKind
	Status TxnStatus
	Limit  int
	Offset int
}

type TransactionRepository interface {
	Create(ctx context.Context, t *Transaction) error
	// Oldest first.
	ListByApplicationID(ctx context.Context, applicationID uint64) ([]Transaction, error)
	// Newest first; limit <= 0 returns all.
	ListByUserID(ctx context.Context, userID string, limit int) ([]Transaction, error)
	// Newest first page of the user's transactions matching f, with the total match count.
	Search(ctx context.Context, f TxnFilter) ([]Transaction, int64, error)
	// Moves every pending transaction of kind on the application to status.
	SettlePending(ctx context.Context, applicationID uint64, kind TxnKind, status TxnStatus) error
}
