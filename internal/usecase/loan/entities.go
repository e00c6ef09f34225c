package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"pocketcredit-backend/internal/domain/amortization"
	"pocketcredit-backend/internal/domain/eligibility"
	"pocketcredit-backend/internal/domain/history"
	domain "pocketcredit-backend/internal/domain/loan"
)

type EligibilityInput struct {
	Amount decimal.Decimal
	Tenure int
	// Empty means the unit of the user's tier.
	Unit amortization.TenureUnit
}

type SubmitInput struct {
	Amount  decimal.Decimal
	Tenure  int
	Unit    amortization.TenureUnit
	Purpose string
}

type EligibilityDTO struct {
	IsEligible      bool                    `json:"is_eligible"`
	TierName        string                  `json:"tier_name"`
	BlockingReasons []eligibility.Reason    `json:"blocking_reasons"`
	Warnings        []eligibility.Reason    `json:"warnings"`
	Projection      *eligibility.Projection `json:"projection,omitempty"`
	// Per-tenure ceilings at the income cap, once income is verified.
	Affordability *eligibility.Affordability `json:"affordability,omitempty"`
}

// OffersDTO lists what the rate card extends to the user. The bureau score is shown
// when one has been pulled.
type OffersDTO struct {
	TierName    string              `json:"tier_name"`
	CreditScore *int                `json:"credit_score,omitempty"`
	CreditBand  string              `json:"credit_band,omitempty"`
	Offers      []eligibility.Offer `json:"offers"`
}

// TransactionQuery pages the user's transactions. Empty Kind or Status matches any.
type TransactionQuery struct {
	Kind   domain.TxnKind
	Status domain.TxnStatus
	Page   int
	Limit  int
}

type TransactionPage struct {
	Transactions []domain.Transaction `json:"transactions"`
	Page         int                  `json:"page"`
	Limit        int                  `json:"limit"`
	Total        int64                `json:"total"`
}

// LoanView is an application together with its loan account, when one exists.
type LoanView struct {
	Application  domain.Application   `json:"application"`
	Loan         *domain.Loan         `json:"loan,omitempty"`
	NextDueDate  *time.Time           `json:"next_due_date,omitempty"`
	Outstanding  *decimal.Decimal     `json:"outstanding_principal,omitempty"`
	Transactions []domain.Transaction `json:"transactions"`
}

type ScheduleDTO struct {
	LoanID        string               `json:"loan_id"`
	Indicative    bool                 `json:"indicative"`
	EMI           decimal.Decimal      `json:"emi"`
	TotalInterest decimal.Decimal      `json:"total_interest"`
	TotalPayable  decimal.Decimal      `json:"total_payable"`
	Entries       []amortization.Entry `json:"entries"`
}

type PreclosureDTO struct {
	LoanID              string                       `json:"loan_id"`
	Eligible            bool                         `json:"eligible"`
	MinPaidInstallments int                          `json:"min_paid_installments"`
	Quote               amortization.PreclosureQuote `json:"quote"`
}

type RepaymentDTO struct {
	LoanID string             `json:"loan_id"`
	Status domain.Status      `json:"status"`
	Result domain.Repayment   `json:"result"`
	Txn    domain.Transaction `json:"transaction"`
}

type TimelineDTO struct {
	LoanID string          `json:"loan_id"`
	Events []history.Event `json:"events"`
}
