package applicant

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("applicant not found")

// Applicant is the borrower profile: tier, declared income and verification flags.
type Applicant struct {
	ID                  uint64          `gorm:"primaryKey;column:id" json:"-"`
	UserID              string          `gorm:"size:32;not null;uniqueIndex" json:"user_id"`
	TierName            string          `gorm:"size:32;not null" json:"tier_name"`
	MonthlyIncome       decimal.Decimal `gorm:"type:decimal(18,2)" json:"monthly_income"`
	IncomeVerified      bool            `json:"income_verified"`
	IdentityVerified    bool            `json:"identity_verified"`
	BankAccountVerified bool            `json:"bank_account_verified"`
	EmailVerified       bool            `json:"email_verified"`
	PhoneVerified       bool            `json:"phone_verified"`
	PAN                 string          `gorm:"size:10" json:"pan,omitempty"`
	BankAccountNumber   string          `gorm:"size:18" json:"-"`
	IFSC                string          `gorm:"size:11" json:"ifsc,omitempty"`
	CreditScore         int             `json:"credit_score,omitempty"`
	CreditCheckedAt     *time.Time      `json:"credit_checked_at,omitempty"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Applicant) TableName() string { return "applicants" }

// KYCComplete reports whether both identity and bank account are verified.
func (a *Applicant) KYCComplete() bool { return a.IdentityVerified && a.BankAccountVerified }

type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentVerified DocumentStatus = "verified"
	DocumentRejected DocumentStatus = "rejected"
)

func (s DocumentStatus) Valid() bool {
	return s == DocumentPending || s == DocumentVerified || s == DocumentRejected
}

// Document is a KYC document record. Only metadata is kept here.
type Document struct {
	ID         uint64         `gorm:"primaryKey;column:id" json:"-"`
	DocumentID string         `gorm:"size:32;not null;uniqueIndex" json:"document_id"`
	UserID     string         `gorm:"size:32;not null;index" json:"user_id"`
	Name       string         `gorm:"size:64;not null" json:"name"`
	Status     DocumentStatus `gorm:"size:16;not null" json:"status"`
	Remarks    string         `gorm:"size:255" json:"remarks,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Document) TableName() string { return "documents" }
