package amortization

import "github.com/shopspring/decimal"

// PreclosureQuote prices settling a loan early after paidPeriods installments.
type PreclosureQuote struct {
	PaidPeriods          int             `json:"paid_installments"`
	RemainingPeriods     int             `json:"remaining_installments"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
	Charges              decimal.Decimal `json:"preclosure_charges"`
	TotalPayable         decimal.Decimal `json:"total_payable"`
	RemainingInterest    decimal.Decimal `json:"remaining_interest"`
	Savings              decimal.Decimal `json:"savings"`
}

// ComputePreclosure replays the schedule for the paid installments and prices the
// remaining principal plus a charge of chargeRate on it.
func ComputePreclosure(principal, periodicRate decimal.Decimal, numPeriods, paidPeriods int, emi, chargeRate decimal.Decimal) (PreclosureQuote, error) {
	if err := validate(principal, periodicRate, numPeriods); err != nil {
		return PreclosureQuote{}, err
	}
	switch {
	case paidPeriods < 0 || paidPeriods > numPeriods:
		return PreclosureQuote{}, invalid("paid_installments", "must be between 0 and the tenure")
	case !emi.IsPositive():
		return PreclosureQuote{}, invalid("emi", "must be greater than zero")
	case chargeRate.IsNegative():
		return PreclosureQuote{}, invalid("charge_rate", "must not be negative")
	}

	entries := buildWithEMI(principal, periodicRate, numPeriods, emi)

	outstanding := principal
	if paidPeriods > 0 {
		if paidPeriods >= len(entries) {
			outstanding = decimal.Zero
		} else {
			outstanding = entries[paidPeriods-1].RemainingBalance
		}
	}
	remainingInterest := decimal.Zero
	for _, e := range entries {
		if e.Index > paidPeriods {
			remainingInterest = remainingInterest.Add(e.Interest)
		}
	}

	charges := RoundMoney(outstanding.Mul(chargeRate))
	remaining := len(entries) - paidPeriods
	if remaining < 0 {
		remaining = 0
	}
	return PreclosureQuote{
		PaidPeriods:          paidPeriods,
		RemainingPeriods:     remaining,
		OutstandingPrincipal: outstanding,
		Charges:              charges,
		TotalPayable:         outstanding.Add(charges),
		RemainingInterest:    remainingInterest,
		Savings:              remainingInterest.Sub(charges),
	}, nil
}
