package loan

import (
	"errors"
	"fmt"
	"strings"

	"pocketcredit-backend/internal/domain/eligibility"
)

var (
	ErrNotFound              = errors.New("loan not found")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrEligibilityBlocked    = errors.New("applicant is not eligible")
	ErrConcurrentApplication = errors.New("another application is in progress")
	ErrReasonRequired        = errors.New("reason is required")
	ErrBankAccountUnverified = errors.New("bank account is not verified")
	ErrInvalidDisbursalDate  = errors.New("invalid disbursal date")
	ErrGracePeriodPending    = errors.New("activation grace period has not elapsed")
	ErrNotOverdue            = errors.New("loan has no overdue installment")
	ErrNotActive             = errors.New("loan is not active")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrPreclosureNotEligible = errors.New("not enough installments paid to pre-close")
)

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// EligibilityBlockedError carries every blocking reason found.
type EligibilityBlockedError struct {
	Reasons  []eligibility.Reason
	Warnings []eligibility.Reason
}

func (e *EligibilityBlockedError) Error() string {
	codes := make([]string, 0, len(e.Reasons))
	for _, r := range e.Reasons {
		codes = append(codes, r.Code)
	}
	return "applicant is not eligible: " + strings.Join(codes, ", ")
}

func (e *EligibilityBlockedError) Unwrap() error { return ErrEligibilityBlocked }

// ConcurrentApplicationError is returned when the user already has an application in
// flight or another request for the same user holds the lock.
type ConcurrentApplicationError struct {
	UserID        string
	ApplicationID string
}

func (e *ConcurrentApplicationError) Error() string {
	if e.ApplicationID != "" {
		return fmt.Sprintf("user %s already has application %s in progress", e.UserID, e.ApplicationID)
	}
	return fmt.Sprintf("user %s has a request in progress", e.UserID)
}

func (e *ConcurrentApplicationError) Unwrap() error { return ErrConcurrentApplication }
