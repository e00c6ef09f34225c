// Package eligibility decides whether an applicant may borrow the requested terms.
package eligibility

import (
	"fmt"

	"github.com/shopspring/decimal"

	"pocketcredit-backend/internal/domain/amortization"
)

// Reason codes. Blocking codes reject the application; warning codes do not.
const (
	CodeUnknownTier         = "tier_unknown"
	CodeAmountBelowMinimum  = "amount_below_minimum"
	CodeAmountAboveMaximum  = "amount_above_maximum"
	CodeTenureAboveMaximum  = "tenure_above_maximum"
	CodeTenureUnitMismatch  = "tenure_unit_mismatch"
	CodeInvalidTerms        = "invalid_terms"
	CodeIdentityUnverified  = "identity_unverified"
	CodeBankUnverified      = "bank_account_unverified"
	CodeIncomeUnverified    = "income_unverified"
	CodeIncomeBelowMinimum  = "income_below_minimum"
	CodeOpenApplication     = "open_application_exists"
	CodeEmailUnverified     = "email_unverified"
	CodePhoneUnverified     = "phone_unverified"
	CodeInstallmentTooLarge = "installment_exceeds_income_share"
)

type Reason struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Applicant is the slice of a borrower profile the rules read.
type Applicant struct {
	TierName            string
	MonthlyIncome       decimal.Decimal
	IncomeVerified      bool
	IdentityVerified    bool
	BankAccountVerified bool
	EmailVerified       bool
	PhoneVerified       bool
}

type Request struct {
	Amount decimal.Decimal
	Tenure int
	Unit   amortization.TenureUnit
}

// Projection prices the request on the tier's rate card.
type Projection struct {
	PeriodicRate  decimal.Decimal   `json:"periodic_rate"`
	EMI           decimal.Decimal   `json:"emi"`
	TotalInterest decimal.Decimal   `json:"total_interest"`
	TotalPayable  decimal.Decimal   `json:"total_payable"`
	Fees          amortization.Fees `json:"fees"`
}

type Result struct {
	IsEligible      bool        `json:"is_eligible"`
	BlockingReasons []Reason    `json:"blocking_reasons"`
	Warnings        []Reason    `json:"warnings"`
	Tier            *Tier       `json:"tier,omitempty"`
	Projection      *Projection `json:"projection,omitempty"`
	// Affordability is set for a known tier once income is verified.
	Affordability *Affordability `json:"affordability,omitempty"`
}

// Policy holds the thresholds that are not part of a tier.
type Policy struct {
	MinMonthlyIncome decimal.Decimal
	// FOIRLimit is the share of monthly income a projected installment may take
	// before a warning is raised. Zero disables the check.
	FOIRLimit decimal.Decimal
	Fees      amortization.FeePolicy
}

type Evaluator struct {
	card   RateCard
	policy Policy
}

func NewEvaluator(card RateCard, policy Policy) *Evaluator {
	return &Evaluator{card: card, policy: policy}
}

func (e *Evaluator) RateCard() RateCard { return e.card }

func (e *Evaluator) Policy() Policy { return e.policy }

// Evaluate runs every rule without short-circuiting. openApplications is the number
// of the applicant's other applications in a non-terminal status.
func (e *Evaluator) Evaluate(a Applicant, req Request, openApplications int) Result {
	res := Result{BlockingReasons: []Reason{}, Warnings: []Reason{}}
	block := func(code, msg string) { res.BlockingReasons = append(res.BlockingReasons, Reason{code, msg}) }
	warn := func(code, msg string) { res.Warnings = append(res.Warnings, Reason{code, msg}) }

	tier, known := e.card.Lookup(a.TierName)
	// priced stays true only while the terms fit the tier; the projection is
	// never computed for terms that are already rejected.
	priced := known
	if !known {
		block(CodeUnknownTier, fmt.Sprintf("tier %q is not offered", a.TierName))
	} else {
		t := tier
		res.Tier = &t
		if req.Amount.LessThan(tier.MinAmount) {
			priced = false
			block(CodeAmountBelowMinimum, fmt.Sprintf("amount must be at least %s", tier.MinAmount.StringFixed(2)))
		}
		if req.Amount.GreaterThan(tier.MaxAmount) {
			priced = false
			block(CodeAmountAboveMaximum, fmt.Sprintf("amount must be at most %s", tier.MaxAmount.StringFixed(2)))
		}
		if req.Tenure > tier.MaxTenure {
			priced = false
			block(CodeTenureAboveMaximum, fmt.Sprintf("tenure must be at most %d %ss", tier.MaxTenure, tier.TenureUnit))
		}
		if req.Unit != tier.TenureUnit {
			priced = false
			block(CodeTenureUnitMismatch, fmt.Sprintf("tier %s is repaid in %ss", tier.Name, tier.TenureUnit))
		}
	}

	if !a.IdentityVerified {
		block(CodeIdentityUnverified, "identity (PAN) is not verified")
	}
	if !a.BankAccountVerified {
		block(CodeBankUnverified, "bank account is not verified")
	}
	if !a.EmailVerified {
		warn(CodeEmailUnverified, "email address is not verified")
	}
	if !a.PhoneVerified {
		warn(CodePhoneUnverified, "phone number is not verified")
	}

	if !a.IncomeVerified {
		block(CodeIncomeUnverified, "monthly income is not verified")
	} else if a.MonthlyIncome.LessThan(e.policy.MinMonthlyIncome) {
		block(CodeIncomeBelowMinimum, fmt.Sprintf("monthly income must be at least %s", e.policy.MinMonthlyIncome.StringFixed(2)))
	}

	if openApplications > 0 {
		block(CodeOpenApplication, "another application is still in progress")
	}

	if priced {
		proj, err := e.project(tier, req)
		if err != nil {
			block(CodeInvalidTerms, err.Error())
		} else {
			res.Projection = proj
			if e.exceedsIncomeShare(a.MonthlyIncome, proj.EMI, tier.TenureUnit) {
				warn(CodeInstallmentTooLarge, fmt.Sprintf("installment exceeds %s%% of monthly income",
					e.policy.FOIRLimit.Mul(decimal.NewFromInt(100)).String()))
			}
		}
	}

	if known {
		res.Affordability = e.affordability(a, tier, req.Amount)
	}

	res.IsEligible = len(res.BlockingReasons) == 0
	return res
}

func (e *Evaluator) project(tier Tier, req Request) (*Projection, error) {
	r, err := amortization.PeriodicRate(tier.Rate, tier.TenureUnit)
	if err != nil {
		return nil, err
	}
	emi, err := amortization.ComputeEMI(req.Amount, r, req.Tenure)
	if err != nil {
		return nil, err
	}
	interest := amortization.ComputeTotalInterest(req.Amount, emi, req.Tenure)
	return &Projection{
		PeriodicRate:  r,
		EMI:           emi,
		TotalInterest: interest,
		TotalPayable:  req.Amount.Add(interest),
		Fees:          amortization.ComputeFees(req.Amount, e.policy.Fees),
	}, nil
}

// exceedsIncomeShare compares the monthly-equivalent installment with the income share.
func (e *Evaluator) exceedsIncomeShare(income, emi decimal.Decimal, unit amortization.TenureUnit) bool {
	if !e.policy.FOIRLimit.IsPositive() || !income.IsPositive() {
		return false
	}
	monthly := emi
	if unit == amortization.UnitDay {
		monthly = emi.Mul(decimal.NewFromInt(30))
	}
	return monthly.GreaterThan(income.Mul(e.policy.FOIRLimit))
}
