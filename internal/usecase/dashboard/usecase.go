// Package dashboard assembles the borrower's home screen from stored records. Nothing
// is cached; every call recomputes.
package dashboard

import (
	"context"
	"errors"
	"time"

	"pocketcredit-backend/internal/domain/applicant"
	domain "pocketcredit-backend/internal/domain/dashboard"
	"pocketcredit-backend/internal/domain/loan"
	"pocketcredit-backend/internal/domain/uow"
	"pocketcredit-backend/internal/domain/verification"
)

var ErrInvalidMonth = errors.New("month must be between 1 and 12")

type Usecase struct {
	uow            uow.UnitOfWork
	upcomingWindow time.Duration
	now            func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, upcomingWindow time.Duration) *Usecase {
	return &Usecase{uow: tx, upcomingWindow: upcomingWindow, now: func() time.Time { return time.Now().UTC() }}
}

type records struct {
	apps  []loan.Application
	loans []loan.Loan
	txns  []loan.Transaction
	docs  []applicant.Document
	kyc   bool
}

func (u *Usecase) load(ctx context.Context, userID string, withDocs bool) (records, error) {
	var rec records
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		if rec.apps, err = r.Applications.ListByUserID(ctx, userID); err != nil {
			return err
		}
		if rec.loans, err = r.Loans.ListByUserID(ctx, userID); err != nil {
			return err
		}
		if rec.txns, err = r.Transactions.ListByUserID(ctx, userID, 0); err != nil {
			return err
		}
		if !withDocs {
			return nil
		}
		if rec.docs, err = r.Documents.ListByUserID(ctx, userID); err != nil {
			return err
		}
		a, err := r.Applicants.GetByUserID(ctx, userID)
		switch {
		case errors.Is(err, applicant.ErrNotFound):
			return nil
		case err != nil:
			return err
		}
		rec.kyc = a.KYCComplete()
		return nil
	})
	return rec, err
}

func (u *Usecase) Summary(ctx context.Context, userID string) (*domain.Summary, error) {
	rec, err := u.load(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	s := domain.Summarize(domain.Input{
		Applications:   rec.apps,
		Loans:          rec.loans,
		Transactions:   rec.txns,
		Documents:      rec.docs,
		KYCComplete:    rec.kyc,
		AsOf:           u.now(),
		UpcomingWindow: u.upcomingWindow,
	})
	return &s, nil
}

// Calendar lists installments and repayments in a month. A zero year or month means
// the current one.
func (u *Usecase) Calendar(ctx context.Context, userID string, year, month int) (*domain.Calendar, error) {
	now := u.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}
	rec, err := u.load(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	cal, err := domain.PaymentCalendar(rec.loans, rec.txns, year, time.Month(month), now)
	if err != nil {
		return nil, err
	}
	return &cal, nil
}

// CreditScoreDTO is the last bureau pull. Checked is false until one has been made.
type CreditScoreDTO struct {
	Checked   bool       `json:"checked"`
	Score     int        `json:"score,omitempty"`
	Band      string     `json:"band,omitempty"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
}

func (u *Usecase) CreditScore(ctx context.Context, userID string) (*CreditScoreDTO, error) {
	dto := &CreditScoreDTO{}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Applicants.GetByUserID(ctx, userID)
		switch {
		case errors.Is(err, applicant.ErrNotFound):
			return nil
		case err != nil:
			return err
		}
		if a.CreditCheckedAt == nil {
			return nil
		}
		dto.Checked = true
		dto.Score = a.CreditScore
		dto.Band = verification.ScoreBand(a.CreditScore)
		dto.CheckedAt = a.CreditCheckedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}
