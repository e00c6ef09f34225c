package eligibility

import (
	"github.com/shopspring/decimal"

	"pocketcredit-backend/internal/domain/amortization"
)

var (
	monthLadder = []int{6, 12, 24, 36, 48, 60}
	dayLadder   = []int{7, 15, 30, 45, 60, 90}
	daysInMonth = decimal.NewFromInt(30)
)

// TenureOption is what the applicant can borrow over one tenure at the income cap.
type TenureOption struct {
	Tenure     int              `json:"tenure"`
	MaxAmount  decimal.Decimal  `json:"max_amount"`
	EMI        *decimal.Decimal `json:"emi,omitempty"`
	Affordable bool             `json:"affordable"`
}

// Affordability spreads the requested amount over the tier's standard tenures.
// RecommendedTenure is the shortest affordable one, zero when none is.
type Affordability struct {
	MaxInstallment    decimal.Decimal `json:"max_installment"`
	Options           []TenureOption  `json:"options"`
	RecommendedTenure int             `json:"recommended_tenure,omitempty"`
}

// Offer is the largest loan a tier extends to the applicant over its longest tenure.
type Offer struct {
	TierName      string                  `json:"tier_name"`
	Current       bool                    `json:"current"`
	Amount        decimal.Decimal         `json:"amount"`
	Tenure        int                     `json:"tenure"`
	TenureUnit    amortization.TenureUnit `json:"tenure_unit"`
	Rate          decimal.Decimal         `json:"rate"`
	EMI           decimal.Decimal         `json:"emi"`
	TotalInterest decimal.Decimal         `json:"total_interest"`
	TotalPayable  decimal.Decimal         `json:"total_payable"`
	Fees          amortization.Fees       `json:"fees"`
}

// tenures lists the ladder entries within the tier, always ending at its maximum.
func tenures(t Tier) []int {
	ladder := monthLadder
	if t.TenureUnit == amortization.UnitDay {
		ladder = dayLadder
	}
	out := make([]int, 0, len(ladder)+1)
	for _, n := range ladder {
		if n < t.MaxTenure {
			out = append(out, n)
		}
	}
	return append(out, t.MaxTenure)
}

// maxInstallment is the per-period installment the income share allows. ok is false
// when the applicant's income cannot be relied on or the cap is disabled.
func (e *Evaluator) maxInstallment(a Applicant, unit amortization.TenureUnit) (decimal.Decimal, bool) {
	if !a.IncomeVerified || !a.MonthlyIncome.IsPositive() || !e.policy.FOIRLimit.IsPositive() {
		return decimal.Zero, false
	}
	limit := a.MonthlyIncome.Mul(e.policy.FOIRLimit)
	if unit == amortization.UnitDay {
		limit = limit.Div(daysInMonth)
	}
	limit = limit.Truncate(amortization.MoneyPlaces)
	return limit, limit.IsPositive()
}

// maxAmount is the largest principal the installment cap supports over n periods,
// capped at the tier maximum.
func maxAmount(t Tier, installment decimal.Decimal, n int) (decimal.Decimal, error) {
	r, err := amortization.PeriodicRate(t.Rate, t.TenureUnit)
	if err != nil {
		return decimal.Zero, err
	}
	p, err := amortization.MaxPrincipal(installment, r, n)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Min(p, t.MaxAmount), nil
}

func (e *Evaluator) affordability(a Applicant, t Tier, amount decimal.Decimal) *Affordability {
	limit, ok := e.maxInstallment(a, t.TenureUnit)
	if !ok {
		return nil
	}
	r, err := amortization.PeriodicRate(t.Rate, t.TenureUnit)
	if err != nil {
		return nil
	}
	out := &Affordability{MaxInstallment: limit, Options: []TenureOption{}}
	for _, n := range tenures(t) {
		most, err := maxAmount(t, limit, n)
		if err != nil {
			return nil
		}
		opt := TenureOption{Tenure: n, MaxAmount: most}
		if amount.IsPositive() {
			if emi, err := amortization.ComputeEMI(amount, r, n); err == nil {
				opt.EMI = &emi
			}
		}
		opt.Affordable = amount.GreaterThanOrEqual(t.MinAmount) && amount.LessThanOrEqual(most)
		if opt.Affordable && out.RecommendedTenure == 0 {
			out.RecommendedTenure = n
		}
		out.Options = append(out.Options, opt)
	}
	return out
}

// Offers prices, for every tier on the card, the largest amount the applicant's income
// supports over the tier's longest tenure. Tiers whose minimum is out of reach are left
// out; an applicant without verified income above the floor gets none.
func (e *Evaluator) Offers(a Applicant) []Offer {
	out := []Offer{}
	if !a.IncomeVerified || a.MonthlyIncome.LessThan(e.policy.MinMonthlyIncome) {
		return out
	}
	for _, t := range e.card.Tiers() {
		amount := t.MaxAmount
		if limit, ok := e.maxInstallment(a, t.TenureUnit); ok {
			most, err := maxAmount(t, limit, t.MaxTenure)
			if err != nil {
				continue
			}
			amount = most
		}
		if amount.LessThan(t.MinAmount) {
			continue
		}
		proj, err := e.project(t, Request{Amount: amount, Tenure: t.MaxTenure, Unit: t.TenureUnit})
		if err != nil {
			continue
		}
		out = append(out, Offer{
			TierName:      t.Name,
			Current:       t.Name == a.TierName,
			Amount:        amount,
			Tenure:        t.MaxTenure,
			TenureUnit:    t.TenureUnit,
			Rate:          t.Rate,
			EMI:           proj.EMI,
			TotalInterest: proj.TotalInterest,
			TotalPayable:  proj.TotalPayable,
			Fees:          proj.Fees,
		})
	}
	return out
}
