package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"pocketcredit-backend/internal/domain/amortization"
)

// Status is shared by an application and the loan materialized from it; after
// approval both carry the same value.
type Status string

const (
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusDisbursed   Status = "disbursed"
	StatusActive      Status = "active"
	StatusCompleted   Status = "completed"
	StatusRejected    Status = "rejected"
	StatusCancelled   Status = "cancelled"
	StatusDefaulted   Status = "defaulted"
)

// OpenStatuses are the non-terminal statuses. A user holds at most one application
// in any of them.
var OpenStatuses = []Status{StatusSubmitted, StatusUnderReview, StatusApproved, StatusDisbursed, StatusActive}

func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusRejected, StatusCancelled, StatusDefaulted:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terms of a loan. Rate is annual for month tenures and per day for day tenures.
type Terms struct {
	Principal   decimal.Decimal         `gorm:"column:principal;type:decimal(18,2);not null" json:"principal"`
	Rate        decimal.Decimal         `gorm:"column:rate;type:decimal(12,8);not null" json:"rate"`
	TenureUnits int                     `gorm:"column:tenure;not null" json:"tenure"`
	TenureUnit  amortization.TenureUnit `gorm:"column:tenure_unit;size:8;not null" json:"tenure_unit"`
}

func (t Terms) PeriodicRate() (decimal.Decimal, error) {
	return amortization.PeriodicRate(t.Rate, t.TenureUnit)
}

// Application is a borrower's request for a loan. Table: loan_applications.
type Application struct {
	ID                 uint64          `gorm:"primaryKey;column:id" json:"-"`
	ApplicationID      string          `gorm:"size:32;not null;uniqueIndex" json:"loan_id"`
	UserID             string          `gorm:"size:32;not null;index:idx_applications_user_status" json:"user_id"`
	Terms              Terms           `gorm:"embedded" json:"terms"`
	Purpose            string          `gorm:"size:255" json:"purpose,omitempty"`
	TierName           string          `gorm:"size:32;not null" json:"tier_name"`
	Status             Status          `gorm:"size:16;not null;index:idx_applications_user_status" json:"status"`
	ProcessingFee      decimal.Decimal `gorm:"type:decimal(18,2)" json:"processing_fee"`
	GST                decimal.Decimal `gorm:"column:gst;type:decimal(18,2)" json:"gst"`
	Insurance          decimal.Decimal `gorm:"type:decimal(18,2)" json:"insurance"`
	AppliedAt          time.Time       `gorm:"not null" json:"applied_at"`
	DecisionAt         *time.Time      `json:"decision_at,omitempty"`
	DecisionReason     string          `gorm:"size:255" json:"decision_reason,omitempty"`
	CancellationReason string          `gorm:"size:255" json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Application) TableName() string { return "loan_applications" }

// Loan is the account opened when an application is approved. Table: loans.
type Loan struct {
	ID               uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID           string          `gorm:"size:32;not null;uniqueIndex" json:"account_id"`
	ApplicationID    uint64          `gorm:"not null;uniqueIndex" json:"-"`
	UserID           string          `gorm:"size:32;not null;index" json:"user_id"`
	Terms            Terms           `gorm:"embedded" json:"terms"`
	EMI              decimal.Decimal `gorm:"column:emi;type:decimal(18,2);not null" json:"emi"`
	ApprovedAt       time.Time       `gorm:"not null" json:"approved_at"`
	DisbursalDate    *time.Time      `json:"disbursal_date,omitempty"`
	ActivatedAt      *time.Time      `json:"activated_at,omitempty"`
	PaidInstallments int             `gorm:"not null;default:0" json:"paid_installments"`
	Status           Status          `gorm:"size:16;not null;index" json:"status"`
	ClosedAt         *time.Time      `json:"closed_at,omitempty"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// Schedule derives the repayment schedule. Due dates are attached once the loan has
// been disbursed.
func (l *Loan) Schedule() ([]amortization.Entry, error) {
	r, err := l.Terms.PeriodicRate()
	if err != nil {
		return nil, err
	}
	entries, err := amortization.BuildSchedule(l.Terms.Principal, r, l.Terms.TenureUnits)
	if err != nil {
		return nil, err
	}
	if l.DisbursalDate == nil {
		for i := range entries {
			entries[i].Paid = entries[i].Index <= l.PaidInstallments
		}
		return entries, nil
	}
	return amortization.AttachDueDates(entries, *l.DisbursalDate, l.Terms.TenureUnit, l.PaidInstallments), nil
}

// NextDueDate is disbursal + (paid+1) periods. ok is false before disbursal or once
// every installment is paid.
func (l *Loan) NextDueDate() (time.Time, bool) {
	if l.DisbursalDate == nil || l.PaidInstallments >= l.Terms.TenureUnits {
		return time.Time{}, false
	}
	return amortization.AddPeriods(*l.DisbursalDate, l.Terms.TenureUnit, l.PaidInstallments+1), true
}

// ApproxOutstanding is max(0, principal − paid·emi), the dashboard's running balance.
func (l *Loan) ApproxOutstanding() decimal.Decimal {
	paid := l.EMI.Mul(decimal.NewFromInt(int64(l.PaidInstallments)))
	out := l.Terms.Principal.Sub(paid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

type TxnKind string

const (
	KindFee       TxnKind = "fee"
	KindRepayment TxnKind = "repayment"
	KindDisbursal TxnKind = "disbursal"
)

type TxnStatus string

const (
	TxnPending   TxnStatus = "pending"
	TxnCompleted TxnStatus = "completed"
	TxnFailed    TxnStatus = "failed"
)

// Transaction is a money movement on an application, signed from the borrower's
// side: disbursals are positive, fees and repayments negative. Only Status changes
// after insert.
type Transaction struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	TxnID         string          `gorm:"size:32;not null;uniqueIndex" json:"transaction_id"`
	ApplicationID uint64          `gorm:"not null;index" json:"-"`
	UserID        string          `gorm:"size:32;not null;index:idx_transactions_user_created" json:"user_id"`
	Kind          TxnKind         `gorm:"size:16;not null" json:"kind"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Status        TxnStatus       `gorm:"size:16;not null" json:"status"`
	Reference     string          `gorm:"size:64" json:"reference,omitempty"`
	Description   string          `gorm:"size:255" json:"description,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;index:idx_transactions_user_created" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Transaction) TableName() string { return "transactions" }
