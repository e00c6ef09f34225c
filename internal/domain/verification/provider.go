// Package verification is the port to third-party KYC services: credit bureau,
// PAN registry and bank account validation.
package verification

import (
	"context"
	"errors"
	"time"
)

var ErrUnavailable = errors.New("verification provider unavailable")

type CreditProfile struct {
	PAN            string    `json:"pan"`
	Score          int       `json:"score"`
	Band           string    `json:"band"`
	ActiveAccounts int       `json:"active_accounts"`
	Enquiries      int       `json:"recent_enquiries"`
	CheckedAt      time.Time `json:"checked_at"`
}

type IdentityResult struct {
	PAN          string `json:"pan"`
	Verified     bool   `json:"verified"`
	NameOnRecord string `json:"name_on_record,omitempty"`
	Message      string `json:"message,omitempty"`
}

type BankAccountResult struct {
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
	Verified      bool   `json:"verified"`
	BankName      string `json:"bank_name,omitempty"`
	Message       string `json:"message,omitempty"`
}

type Provider interface {
	FetchCreditProfile(ctx context.Context, pan string) (CreditProfile, error)
	VerifyIdentity(ctx context.Context, pan, fullName string) (IdentityResult, error)
	VerifyBankAccount(ctx context.Context, accountNumber, ifsc string) (BankAccountResult, error)
}

// ScoreBand buckets a bureau score.
func ScoreBand(score int) string {
	switch {
	case score >= 750:
		return "excellent"
	case score >= 700:
		return "good"
	case score >= 650:
		return "fair"
	default:
		return "poor"
	}
}
