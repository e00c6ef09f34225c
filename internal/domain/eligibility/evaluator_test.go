package eligibility

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketcredit-backend/internal/domain/amortization"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	card, err := NewRateCard([]Tier{
		{Name: "gold", MinAmount: d("25000"), MaxAmount: d("500000"), MaxTenure: 36, TenureUnit: amortization.UnitMonth, Rate: d("0.14")},
		{Name: "payday", MinAmount: d("1000"), MaxAmount: d("20000"), MaxTenure: 60, TenureUnit: amortization.UnitDay, Rate: d("0.001")},
	})
	require.NoError(t, err)
	return NewEvaluator(card, Policy{
		MinMonthlyIncome: d("15000"),
		FOIRLimit:        d("0.6"),
		Fees: amortization.FeePolicy{
			ProcessingRate: d("0.02"),
			ProcessingCap:  d("10000"),
			GSTRate:        d("0.18"),
			InsuranceRate:  d("0.005"),
		},
	})
}

func verified(tier string) Applicant {
	return Applicant{
		TierName:            tier,
		MonthlyIncome:       d("50000"),
		IncomeVerified:      true,
		IdentityVerified:    true,
		BankAccountVerified: true,
		EmailVerified:       true,
		PhoneVerified:       true,
	}
}

func codes(rs []Reason) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Code)
	}
	return out
}

func TestEvaluate_Eligible(t *testing.T) {
	e := testEvaluator(t)
	res := e.Evaluate(verified("gold"), Request{Amount: d("100000"), Tenure: 12, Unit: amortization.UnitMonth}, 0)

	assert.True(t, res.IsEligible)
	assert.Empty(t, res.BlockingReasons)
	assert.Empty(t, res.Warnings)
	require.NotNil(t, res.Projection)
	assert.Equal(t, "8978.71", res.Projection.EMI.StringFixed(2))
	assert.Equal(t, "7744.52", res.Projection.TotalInterest.StringFixed(2))
	assert.Equal(t, "107744.52", res.Projection.TotalPayable.StringFixed(2))
	assert.Equal(t, "2000.00", res.Projection.Fees.ProcessingFee.StringFixed(2))
	require.NotNil(t, res.Tier)
	assert.Equal(t, "gold", res.Tier.Name)
}

func TestEvaluate_Rules(t *testing.T) {
	e := testEvaluator(t)

	tests := []struct {
		name      string
		applicant func(a *Applicant)
		req       Request
		open      int
		blocking  []string
		warnings  []string
	}{
		{
			name:     "amount below tier minimum",
			req:      Request{Amount: d("1000"), Tenure: 12, Unit: amortization.UnitMonth},
			blocking: []string{CodeAmountBelowMinimum},
		},
		{
			name:     "amount above tier maximum",
			req:      Request{Amount: d("600000"), Tenure: 36, Unit: amortization.UnitMonth},
			blocking: []string{CodeAmountAboveMaximum},
		},
		{
			name:     "tenure above tier maximum",
			req:      Request{Amount: d("100000"), Tenure: 48, Unit: amortization.UnitMonth},
			blocking: []string{CodeTenureAboveMaximum},
		},
		{
			name:     "tenure unit differs from tier",
			req:      Request{Amount: d("100000"), Tenure: 12, Unit: amortization.UnitDay},
			blocking: []string{CodeTenureUnitMismatch},
		},
		{
			name:      "unknown tier",
			applicant: func(a *Applicant) { a.TierName = "diamond" },
			req:       Request{Amount: d("100000"), Tenure: 12, Unit: amortization.UnitMonth},
			blocking:  []string{CodeUnknownTier},
		},
		{
			name:      "identity and bank unverified",
			applicant: func(a *Applicant) { a.IdentityVerified, a.BankAccountVerified = false, false },
			req:       Request{Amount: d("100000"), Tenure: 12, Unit: amortization.UnitMonth},
			blocking:  []string{CodeIdentityUnverified, CodeBankUnverified},
		},
		{
			name:      "contact channels unverified only warn",
			applicant: func(a *Applicant) { a.EmailVerified, a.PhoneVerified = false, false },
			req:       Request{Amount: d("100000"), Tenure: 12, Unit: amortization.UnitMonth},
			warnings:  []string{CodeEmailUnverified, CodePhoneUnverified},
		},
		{
			name:      "income unverified",
			applicant: func(a *Applicant) { a.IncomeVerified = false },
			req:       Request{Amount: d("100000"), Tenure: 12, Unit: amortization.UnitMonth},
			blocking:  []string{CodeIncomeUnverified},
		},
		{
			name:      "income below floor",
			applicant: func(a *Applicant) { a.MonthlyIncome = d("10000") },
			req:       Request{Amount: d("25000"), Tenure: 36, Unit: amortization.UnitMonth},
			blocking:  []string{CodeIncomeBelowMinimum},
		},
		{
			name:     "open application elsewhere",
			req:      Request{Amount: d("100000"), Tenure: 12, Unit: amortization.UnitMonth},
			open:     1,
			blocking: []string{CodeOpenApplication},
		},
		{
			name:      "installment above income share",
			applicant: func(a *Applicant) { a.MonthlyIncome = d("20000") },
			req:       Request{Amount: d("200000"), Tenure: 12, Unit: amortization.UnitMonth},
			warnings:  []string{CodeInstallmentTooLarge},
		},
		{
			name:     "zero tenure",
			req:      Request{Amount: d("100000"), Tenure: 0, Unit: amortization.UnitMonth},
			blocking: []string{CodeInvalidTerms},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := verified("gold")
			if tt.applicant != nil {
				tt.applicant(&a)
			}
			res := e.Evaluate(a, tt.req, tt.open)

			assert.ElementsMatch(t, tt.blocking, codes(res.BlockingReasons))
			assert.ElementsMatch(t, tt.warnings, codes(res.Warnings))
			assert.Equal(t, len(tt.blocking) == 0, res.IsEligible)
		})
	}
}

func TestEvaluate_NoShortCircuit(t *testing.T) {
	e := testEvaluator(t)
	a := Applicant{TierName: "gold"}
	res := e.Evaluate(a, Request{Amount: d("1000"), Tenure: 99, Unit: amortization.UnitMonth}, 2)

	assert.False(t, res.IsEligible)
	assert.ElementsMatch(t, []string{
		CodeAmountBelowMinimum,
		CodeTenureAboveMaximum,
		CodeIdentityUnverified,
		CodeBankUnverified,
		CodeIncomeUnverified,
		CodeOpenApplication,
	}, codes(res.BlockingReasons))
}

func TestEvaluate_RejectedTermsAreNotPriced(t *testing.T) {
	e := testEvaluator(t)
	tests := []struct {
		name string
		req  Request
		code string
	}{
		{"tenure far above maximum", Request{Amount: d("100000"), Tenure: 2_000_000_000, Unit: amortization.UnitMonth}, CodeTenureAboveMaximum},
		{"amount above maximum", Request{Amount: d("900000"), Tenure: 12, Unit: amortization.UnitMonth}, CodeAmountAboveMaximum},
		{"amount below minimum", Request{Amount: d("10"), Tenure: 12, Unit: amortization.UnitMonth}, CodeAmountBelowMinimum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			res := e.Evaluate(verified("gold"), tt.req, 0)

			assert.Less(t, time.Since(start), time.Second)
			assert.False(t, res.IsEligible)
			assert.Contains(t, codes(res.BlockingReasons), tt.code)
			assert.NotContains(t, codes(res.BlockingReasons), CodeInvalidTerms)
			assert.Nil(t, res.Projection)
		})
	}
}

func TestEvaluate_DayTier(t *testing.T) {
	e := testEvaluator(t)
	res := e.Evaluate(verified("payday"), Request{Amount: d("10000"), Tenure: 30, Unit: amortization.UnitDay}, 0)

	assert.True(t, res.IsEligible)
	require.NotNil(t, res.Projection)
	assert.True(t, res.Projection.PeriodicRate.Equal(d("0.001")))
	assert.Equal(t, "338.52", res.Projection.EMI.StringFixed(2))
}

func TestEvaluate_Deterministic(t *testing.T) {
	e := testEvaluator(t)
	req := Request{Amount: d("100000"), Tenure: 12, Unit: amortization.UnitMonth}
	a := verified("gold")
	a.EmailVerified = false

	first := e.Evaluate(a, req, 0)
	second := e.Evaluate(a, req, 0)
	assert.Equal(t, first.IsEligible, second.IsEligible)
	assert.Equal(t, first.BlockingReasons, second.BlockingReasons)
	assert.Equal(t, first.Warnings, second.Warnings)
	assert.True(t, first.Projection.EMI.Equal(second.Projection.EMI))
}

func TestNewRateCard_Invalid(t *testing.T) {
	_, err := NewRateCard([]Tier{{Name: "x", MinAmount: d("10"), MaxAmount: d("5"), MaxTenure: 1, TenureUnit: amortization.UnitMonth}})
	assert.Error(t, err)

	_, err = NewRateCard([]Tier{
		{Name: "x", MinAmount: d("1"), MaxAmount: d("5"), MaxTenure: 1, TenureUnit: amortization.UnitMonth},
		{Name: "x", MinAmount: d("1"), MaxAmount: d("5"), MaxTenure: 1, TenureUnit: amortization.UnitMonth},
	})
	assert.Error(t, err)

	_, err = NewRateCard([]Tier{{Name: "x", MinAmount: d("1"), MaxAmount: d("5"), MaxTenure: 1, TenureUnit: "week"}})
	assert.Error(t, err)
}

func TestTierValidate_RatePrecision(t *testing.T) {
	tier := Tier{Name: "x", MinAmount: d("1"), MaxAmount: d("5"), MaxTenure: 1, TenureUnit: amortization.UnitMonth}

	tier.Rate = d("0.12345678")
	assert.NoError(t, tier.Validate())
	tier.Rate = d("0.1400000000")
	assert.NoError(t, tier.Validate(), "trailing zeros are not extra precision")

	tier.Rate = d("0.123456789")
	err := tier.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than 8 decimal places")
}

func TestRateCard_TiersOrdered(t *testing.T) {
	e := testEvaluator(t)
	tiers := e.RateCard().Tiers()
	require.Len(t, tiers, 2)
	assert.Equal(t, "payday", tiers[0].Name)
	assert.Equal(t, "gold", tiers[1].Name)
}
