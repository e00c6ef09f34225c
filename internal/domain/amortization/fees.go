package amortization

import "github.com/shopspring/decimal"

// FeePolicy holds origination charges as fractions of the requested amount.
// A zero ProcessingCap leaves the processing fee uncapped.
type FeePolicy struct {
	ProcessingRate decimal.Decimal
	ProcessingCap  decimal.Decimal
	GSTRate        decimal.Decimal
	InsuranceRate  decimal.Decimal
}

type Fees struct {
	ProcessingFee decimal.Decimal `json:"processing_fee"`
	GST           decimal.Decimal `json:"gst"`
	Insurance     decimal.Decimal `json:"insurance"`
	Total         decimal.Decimal `json:"total"`
}

// ComputeFees prices origination: processing fee (capped), GST on that fee, insurance.
func ComputeFees(amount decimal.Decimal, p FeePolicy) Fees {
	processing := amount.Mul(p.ProcessingRate)
	if p.ProcessingCap.IsPositive() && processing.GreaterThan(p.ProcessingCap) {
		processing = p.ProcessingCap
	}
	processing = RoundMoney(processing)
	gst := RoundMoney(processing.Mul(p.GSTRate))
	insurance := RoundMoney(amount.Mul(p.InsuranceRate))
	return Fees{
		ProcessingFee: processing,
		GST:           gst,
		Insurance:     insurance,
		Total:         processing.Add(gst).Add(insurance),
	}
}
