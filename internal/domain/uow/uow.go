package uow

import (
	"context"

	"pocketcredit-backend/internal/domain/applicant"
	"pocketcredit-backend/internal/domain/history"
	"pocketcredit-backend/internal/domain/loan"
)

// Repos are bound to one database transaction.
type Repos struct {
	Applicants   applicant.Repository
	Documents    applicant.DocumentRepository
	Applications loan.ApplicationRepository
	Loans        loan.LoanRepository
	Transactions loan.TransactionRepository
	History      history.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the user's applicant row first, then pass it in; every check-then-act on
	// that user's applications runs under this lock
	WithinUserTx(ctx context.Context, userID string, fn func(r Repos, a *applicant.Applicant) error) error
}
