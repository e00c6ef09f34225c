package mysql

import (
	"context"

	applicantDomain "pocketcredit-backend/internal/domain/applicant"
	historyDomain "pocketcredit-backend/internal/domain/history"
	loanDomain "pocketcredit-backend/internal/domain/loan"
	"pocketcredit-backend/internal/domain/uow"

	"gorm.io/gorm"
)

// NewRepos binds every repository to db, which may be a transaction.
func NewRepos(db *gorm.DB) uow.Repos {
	return uow.Repos{
		Applicants:   NewApplicantRepository(db),
		Documents:    NewDocumentRepository(db),
		Applications: NewApplicationRepository(db),
		Loans:        NewLoanRepository(db),
		Transactions: NewTransactionRepository(db),
		History:      NewHistoryRepository(db),
	}
}

// Models lists every table owned by this service, for AutoMigrate.
func Models() []any {
	return []any{
		&applicantDomain.Applicant{},
		&applicantDomain.Document{},
		&loanDomain.Application{},
		&loanDomain.Loan{},
		&loanDomain.Transaction{},
		&historyDomain.Event{},
	}
}

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepos(tx))
	})
}

func (u *GormUoW) WithinUserTx(ctx context.Context, userID string, fn func(r uow.Repos, a *applicantDomain.Applicant) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := NewRepos(tx)
		// lock the applicant row up-front; concurrent requests for the same user queue here
		a, err := r.Applicants.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}
