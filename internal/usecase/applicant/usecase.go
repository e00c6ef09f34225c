// Package applicant manages borrower profiles: declared income, contact verification
// flags, KYC documents and tier assignment.
package applicant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domain "pocketcredit-backend/internal/domain/applicant"
	"pocketcredit-backend/internal/domain/eligibility"
	"pocketcredit-backend/internal/domain/uow"
	"pocketcredit-backend/pkg/id"
)

var (
	ErrUnknownTier           = errors.New("unknown tier")
	ErrInvalidDocumentStatus = errors.New("document status must be verified or rejected")
	ErrInvalidIncome         = errors.New("monthly income must not be negative")
	ErrDocumentNameRequired  = errors.New("document name is required")
)

// Ensure returns the user's profile, creating it on the default tier on first contact.
func Ensure(ctx context.Context, tx uow.UnitOfWork, userID, defaultTier string) (*domain.Applicant, error) {
	var out *domain.Applicant
	err := tx.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Applicants.GetByUserID(ctx, userID)
		if err == nil {
			out = a
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		a = &domain.Applicant{UserID: userID, TierName: defaultTier}
		if err := r.Applicants.Create(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		// a concurrent first request may have won the unique index
		if a, rerr := Lookup(ctx, tx, userID); rerr == nil && a != nil {
			return a, nil
		}
		return nil, fmt.Errorf("ensure applicant: %w", err)
	}
	return out, nil
}

// Lookup returns the stored profile, or nil when the user has none yet.
func Lookup(ctx context.Context, tx uow.UnitOfWork, userID string) (*domain.Applicant, error) {
	var out *domain.Applicant
	err := tx.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Applicants.GetByUserID(ctx, userID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		out = a
		return err
	})
	return out, err
}

func ToDTO(a *domain.Applicant) ProfileDTO {
	return ProfileDTO{
		UserID:              a.UserID,
		TierName:            a.TierName,
		MonthlyIncome:       a.MonthlyIncome,
		IncomeVerified:      a.IncomeVerified,
		IdentityVerified:    a.IdentityVerified,
		BankAccountVerified: a.BankAccountVerified,
		EmailVerified:       a.EmailVerified,
		PhoneVerified:       a.PhoneVerified,
		KYCComplete:         a.KYCComplete(),
		CreditScore:         a.CreditScore,
		CreditCheckedAt:     a.CreditCheckedAt,
	}
}

type Usecase struct {
	uow         uow.UnitOfWork
	card        eligibility.RateCard
	defaultTier string
	log         *zap.Logger
}

func NewUsecase(tx uow.UnitOfWork, card eligibility.RateCard, defaultTier string, log *zap.Logger) *Usecase {
	return &Usecase{uow: tx, card: card, defaultTier: defaultTier, log: log}
}

func (u *Usecase) Get(ctx context.Context, userID string) (*ProfileDTO, error) {
	a, err := Ensure(ctx, u.uow, userID, u.defaultTier)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(a)
	return &dto, nil
}

// UpdateProfile records declared income and contact flags. Income counts as verified
// only while a bank account is verified, so changing it re-derives the flag.
func (u *Usecase) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*ProfileDTO, error) {
	if in.MonthlyIncome != nil && in.MonthlyIncome.IsNegative() {
		return nil, ErrInvalidIncome
	}
	if _, err := Ensure(ctx, u.uow, userID, u.defaultTier); err != nil {
		return nil, err
	}
	var dto ProfileDTO
	err := u.uow.WithinUserTx(ctx, userID, func(r uow.Repos, a *domain.Applicant) error {
		if in.MonthlyIncome != nil {
			a.MonthlyIncome = in.MonthlyIncome.Round(2)
			a.IncomeVerified = a.BankAccountVerified && a.MonthlyIncome.IsPositive()
		}
		if in.EmailVerified != nil {
			a.EmailVerified = *in.EmailVerified
		}
		if in.PhoneVerified != nil {
			a.PhoneVerified = *in.PhoneVerified
		}
		if err := r.Applicants.Save(ctx, a); err != nil {
			return err
		}
		dto = ToDTO(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// SetTier moves the user onto another tier of the rate card.
func (u *Usecase) SetTier(ctx context.Context, userID, tierName string) (*ProfileDTO, error) {
	if _, ok := u.card.Lookup(tierName); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTier, tierName)
	}
	if _, err := Ensure(ctx, u.uow, userID, u.defaultTier); err != nil {
		return nil, err
	}
	var dto ProfileDTO
	err := u.uow.WithinUserTx(ctx, userID, func(r uow.Repos, a *domain.Applicant) error {
		prev := a.TierName
		a.TierName = tierName
		if err := r.Applicants.Save(ctx, a); err != nil {
			return err
		}
		u.log.Info("tier changed", zap.String("user_id", userID), zap.String("from", prev), zap.String("to", tierName))
		dto = ToDTO(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (u *Usecase) SubmitDocument(ctx context.Context, userID string, in DocumentInput) (*domain.Document, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrDocumentNameRequired
	}
	if _, err := Ensure(ctx, u.uow, userID, u.defaultTier); err != nil {
		return nil, err
	}
	d := &domain.Document{
		DocumentID: id.NewID32(),
		UserID:     userID,
		Name:       name,
		Status:     domain.DocumentPending,
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error { return r.Documents.Create(ctx, d) })
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (u *Usecase) ListDocuments(ctx context.Context, userID string) ([]domain.Document, error) {
	var docs []domain.Document
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		docs, err = r.Documents.ListByUserID(ctx, userID)
		return err
	})
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, err
}

// ReviewDocument records the back-office decision on a pending document.
func (u *Usecase) ReviewDocument(ctx context.Context, documentID string, in ReviewInput) (*domain.Document, error) {
	status := domain.DocumentStatus(in.Status)
	if status != domain.DocumentVerified && status != domain.DocumentRejected {
		return nil, ErrInvalidDocumentStatus
	}
	var out *domain.Document
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		d, err := r.Documents.GetByDocumentID(ctx, documentID)
		if err != nil {
			return err
		}
		d.Status = status
		d.Remarks = strings.TrimSpace(in.Remarks)
		if err := r.Documents.Save(ctx, d); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("document reviewed", zap.String("document_id", documentID), zap.String("status", string(status)))
	return out, nil
}
