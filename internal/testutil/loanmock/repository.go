package loanmock

import (
	"context"

	domain "pocketcredit-backend/internal/domain/loan"
)

var (
	_ domain.ApplicationRepository = (*ApplicationRepo)(nil)
	_ domain.LoanRepository        = (*LoanRepo)(nil)
	_ domain.TransactionRepository = (*TransactionRepo)(nil)
)

// ApplicationRepo is a function-backed mock that satisfies domain.ApplicationRepository.
// Unset getters report domain.ErrNotFound; unset writers succeed.
type ApplicationRepo struct {
	CreateFn                      func(ctx context.Context, a *domain.Application) error
	GetByApplicationIDFn          func(ctx context.Context, applicationID string) (*domain.Application, error)
	GetByApplicationIDForUpdateFn func(ctx context.Context, applicationID string) (*domain.Application, error)
	ListByUserIDFn                func(ctx context.Context, userID string) ([]domain.Application, error)
	ListOpenByUserIDFn            func(ctx context.Context, userID string) ([]domain.Application, error)
	SaveFn                        func(ctx context.Context, a *domain.Application) error
}

func (m *ApplicationRepo) Create(ctx context.Context, a *domain.Application) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *ApplicationRepo) GetByApplicationID(ctx context.Context, applicationID string) (*domain.Application, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, domain.ErrNotFound
}

func (m *ApplicationRepo) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*domain.Application, error) {
	if m.GetByApplicationIDForUpdateFn != nil {
		return m.GetByApplicationIDForUpdateFn(ctx, applicationID)
	}
	return nil, domain.ErrNotFound
}

func (m *ApplicationRepo) ListByUserID(ctx context.Context, userID string) ([]domain.Application, error) {
	if m.ListByUserIDFn != nil {
		return m.ListByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *ApplicationRepo) ListOpenByUserID(ctx context.Context, userID string) ([]domain.Application, error) {
	if m.ListOpenByUserIDFn != nil {
		return m.ListOpenByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *ApplicationRepo) Save(ctx context.Context, a *domain.Application) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

// LoanRepo is a function-backed mock that satisfies domain.LoanRepository.
type LoanRepo struct {
	CreateFn             func(ctx context.Context, l *domain.Loan) error
	GetByApplicationIDFn func(ctx context.Context, applicationID uint64) (*domain.Loan, error)
	ListByUserIDFn       func(ctx context.Context, userID string) ([]domain.Loan, error)
	SaveFn               func(ctx context.Context, l *domain.Loan) error
}

func (m *LoanRepo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *LoanRepo) GetByApplicationID(ctx context.Context, applicationID uint64) (*domain.Loan, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, domain.ErrNotFound
}

func (m *LoanRepo) ListByUserID(ctx context.Context, userID string) ([]domain.Loan, error) {
	if m.ListByUserIDFn != nil {
		return m.ListByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *LoanRepo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

// TransactionRepo is a function-backed mock that satisfies domain.TransactionRepository.
type TransactionRepo struct {
	CreateFn              func(ctx context.Context, t *domain.Transaction) error
	ListByApplicationIDFn func(ctx context.Context, applicationID uint64) ([]domain.Transaction, error)
	ListByUserIDFn        func(ctx context.Context, userID string, limit int) ([]domain.Transaction, error)
	SearchFn              func(ctx context.Context, f domain.TxnFilter) ([]domain.Transaction, int64, error)
	SettlePendingFn       func(ctx context.Context, applicationID uint64, kind domain.TxnKind, status domain.TxnStatus) error
}

func (m *TransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, t)
	}
	return nil
}

func (m *TransactionRepo) ListByApplicationID(ctx context.Context, applicationID uint64) ([]domain.Transaction, error) {
	if m.ListByApplicationIDFn != nil {
		return m.ListByApplicationIDFn(ctx, applicationID)
	}
	return nil, nil
}

func (m *TransactionRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	if m.ListByUserIDFn != nil {
		return m.ListByUserIDFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *TransactionRepo) Search(ctx context.Context, f domain.TxnFilter) ([]domain.Transaction, int64, error) {
	if m.SearchFn != nil {
		return m.SearchFn(ctx, f)
	}
	return nil, 0, nil
}

func (m *TransactionRepo) SettlePending(ctx context.Context, applicationID uint64, kind domain.TxnKind, status domain.TxnStatus) error {
	if m.SettlePendingFn != nil {
		return m.SettlePendingFn(ctx, applicationID, kind, status)
	}
	return nil
}
