// Package verification runs KYC checks against the verification provider and records
// the outcome on the borrower profile.
package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pocketcredit-backend/internal/domain/applicant"
	"pocketcredit-backend/internal/domain/uow"
	domain "pocketcredit-backend/internal/domain/verification"
	applicantuc "pocketcredit-backend/internal/usecase/applicant"
)

type Usecase struct {
	uow         uow.UnitOfWork
	provider    domain.Provider
	timeout     time.Duration
	defaultTier string
	log         *zap.Logger
	now         func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, p domain.Provider, timeout time.Duration, defaultTier string, log *zap.Logger) *Usecase {
	return &Usecase{
		uow:         tx,
		provider:    p,
		timeout:     timeout,
		defaultTier: defaultTier,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// call bounds one provider round trip. A deadline or a transport failure is reported
// as ErrUnavailable.
func call[T any](ctx context.Context, u *Usecase, what string, fn func(ctx context.Context) (T, error)) (T, error) {
	cctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	res, err := fn(cctx)
	if err == nil {
		return res, nil
	}
	u.log.Warn("verification call failed", zap.String("check", what), zap.Error(err))
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return res, fmt.Errorf("%s: %w", what, domain.ErrUnavailable)
	}
	return res, fmt.Errorf("%s: %w", what, err)
}

// record applies fn to the user's row-locked profile.
func (u *Usecase) record(ctx context.Context, userID string, fn func(a *applicant.Applicant)) (*applicant.Applicant, error) {
	if _, err := applicantuc.Ensure(ctx, u.uow, userID, u.defaultTier); err != nil {
		return nil, err
	}
	var out *applicant.Applicant
	err := u.uow.WithinUserTx(ctx, userID, func(r uow.Repos, a *applicant.Applicant) error {
		fn(a)
		if err := r.Applicants.Save(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

func (u *Usecase) Credit(ctx context.Context, userID, pan string) (*domain.CreditProfile, error) {
	p, err := call(ctx, u, "credit bureau", func(ctx context.Context) (domain.CreditProfile, error) {
		return u.provider.FetchCreditProfile(ctx, pan)
	})
	if err != nil {
		return nil, err
	}
	_, err = u.record(ctx, userID, func(a *applicant.Applicant) {
		checked := p.CheckedAt
		a.CreditScore = p.Score
		a.CreditCheckedAt = &checked
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("credit profile fetched", zap.String("user_id", userID), zap.String("band", p.Band))
	return &p, nil
}

func (u *Usecase) Identity(ctx context.Context, userID, pan, fullName string) (*domain.IdentityResult, error) {
	res, err := call(ctx, u, "identity check", func(ctx context.Context) (domain.IdentityResult, error) {
		return u.provider.VerifyIdentity(ctx, pan, fullName)
	})
	if err != nil {
		return nil, err
	}
	if res.Verified {
		if _, err := u.record(ctx, userID, func(a *applicant.Applicant) {
			a.IdentityVerified = true
			a.PAN = res.PAN
		}); err != nil {
			return nil, err
		}
	}
	u.log.Info("identity checked", zap.String("user_id", userID), zap.Bool("verified", res.Verified))
	return &res, nil
}

// Bank verifies the payout account. Declared income is treated as verified once the
// account it is paid into is.
func (u *Usecase) Bank(ctx context.Context, userID, accountNumber, ifsc string) (*domain.BankAccountResult, error) {
	res, err := call(ctx, u, "bank account check", func(ctx context.Context) (domain.BankAccountResult, error) {
		return u.provider.VerifyBankAccount(ctx, accountNumber, ifsc)
	})
	if err != nil {
		return nil, err
	}
	if res.Verified {
		if _, err := u.record(ctx, userID, func(a *applicant.Applicant) {
			a.BankAccountVerified = true
			a.BankAccountNumber = res.AccountNumber
			a.IFSC = res.IFSC
			a.IncomeVerified = a.MonthlyIncome.IsPositive()
		}); err != nil {
			return nil, err
		}
	}
	u.log.Info("bank account checked", zap.String("user_id", userID), zap.Bool("verified", res.Verified))
	return &res, nil
}

func (u *Usecase) Status(ctx context.Context, userID string) (*applicantuc.ProfileDTO, error) {
	a, err := applicantuc.Ensure(ctx, u.uow, userID, u.defaultTier)
	if err != nil {
		return nil, err
	}
	dto := applicantuc.ToDTO(a)
	return &dto, nil
}
