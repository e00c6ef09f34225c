package applicant

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProfileInput struct {
	MonthlyIncome *decimal.Decimal
	EmailVerified *bool
	PhoneVerified *bool
}

type DocumentInput struct {
	Name string
}

type ReviewInput struct {
	Status  string
	Remarks string
}

type ProfileDTO struct {
	UserID              string          `json:"user_id"`
	TierName            string          `json:"tier_name"`
	MonthlyIncome       decimal.Decimal `json:"monthly_income"`
	IncomeVerified      bool            `json:"income_verified"`
	IdentityVerified    bool            `json:"identity_verified"`
	BankAccountVerified bool            `json:"bank_account_verified"`
	EmailVerified       bool            `json:"email_verified"`
	PhoneVerified       bool            `json:"phone_verified"`
	KYCComplete         bool            `json:"kyc_complete"`
	CreditScore         int             `json:"credit_score,omitempty"`
	CreditCheckedAt     *time.Time      `json:"credit_checked_at,omitempty"`
}
