// Package amortization holds the reducing-balance loan arithmetic: EMI, repayment
// schedule, total interest, pre-closure quotes and origination fees.
//
// All money is shopspring decimal rounded to paise (2 places). Rounding is
// half-up: decimal.Round rounds half away from zero, and every amount rounded
// here is non-negative, so the two coincide.
package amortization

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// TenureUnit is the period of one installment.
type TenureUnit string

const (
	UnitMonth TenureUnit = "month"
	UnitDay   TenureUnit = "day"
)

func (u TenureUnit) Valid() bool { return u == UnitMonth || u == UnitDay }

const (
	// MoneyPlaces is the minor-unit precision of every money value.
	MoneyPlaces int32 = 2
	// ratePlaces bounds intermediate precision of periodic rates and growth factors.
	ratePlaces int32 = 24
)

var (
	ErrInvalidTerms = errors.New("invalid loan terms")

	monthsPerYear = decimal.NewFromInt(12)
	one           = decimal.NewFromInt(1)
)

// InvalidTermsError reports the offending input. errors.Is(err, ErrInvalidTerms) holds.
type InvalidTermsError struct {
	Field  string
	Reason string
}

func (e *InvalidTermsError) Error() string {
	return fmt.Sprintf("invalid loan terms: %s %s", e.Field, e.Reason)
}

func (e *InvalidTermsError) Unwrap() error { return ErrInvalidTerms }

func invalid(field, reason string) error { return &InvalidTermsError{Field: field, Reason: reason} }

// RoundMoney rounds to paise.
func RoundMoney(d decimal.Decimal) decimal.Decimal { return d.Round(MoneyPlaces) }

// PeriodicRate converts a product rate into the rate of one installment period.
// Month products carry an annual rate; day products carry a daily rate as-is.
func PeriodicRate(rate decimal.Decimal, unit TenureUnit) (decimal.Decimal, error) {
	if rate.IsNegative() {
		return decimal.Zero, invalid("rate", "must not be negative")
	}
	switch unit {
	case UnitMonth:
		return rate.DivRound(monthsPerYear, ratePlaces), nil
	case UnitDay:
		return rate, nil
	default:
		return decimal.Zero, invalid("tenure_unit", fmt.Sprintf("%q is not month or day", unit))
	}
}

func validate(principal, periodicRate decimal.Decimal, numPeriods int) error {
	switch {
	case !principal.IsPositive():
		return invalid("principal", "must be greater than zero")
	case periodicRate.IsNegative():
		return invalid("rate", "must not be negative")
	case numPeriods <= 0:
		return invalid("tenure", "must be greater than zero")
	}
	return nil
}

// growth returns (1+r)^n at ratePlaces precision.
func growth(periodicRate decimal.Decimal, numPeriods int) decimal.Decimal {
	base := one.Add(periodicRate)
	acc := one
	for i := 0; i < numPeriods; i++ {
		acc = acc.Mul(base).Round(ratePlaces)
	}
	return acc
}

// ComputeEMI returns the fixed installment P·r·(1+r)^n / ((1+r)^n − 1).
// A zero rate spreads the principal evenly. Terms whose installment rounds to
// zero paise are rejected.
func ComputeEMI(principal, periodicRate decimal.Decimal, numPeriods int) (decimal.Decimal, error) {
	if err := validate(principal, periodicRate, numPeriods); err != nil {
		return decimal.Zero, err
	}
	var emi decimal.Decimal
	if periodicRate.IsZero() {
		emi = RoundMoney(principal.DivRound(decimal.NewFromInt(int64(numPeriods)), ratePlaces))
	} else {
		f := growth(periodicRate, numPeriods)
		num := principal.Mul(periodicRate).Mul(f)
		emi = RoundMoney(num.DivRound(f.Sub(one), ratePlaces))
	}
	if !emi.IsPositive() {
		return decimal.Zero, invalid("principal", "is too small for the tenure")
	}
	return emi, nil
}

// ComputeTotalInterest is emi·n − principal.
func ComputeTotalInterest(principal, emi decimal.Decimal, numPeriods int) decimal.Decimal {
	return emi.Mul(decimal.NewFromInt(int64(numPeriods))).Sub(principal)
}

// MaxPrincipal inverts ComputeEMI: the largest principal, truncated to paise, whose
// installment over numPeriods does not exceed emi.
func MaxPrincipal(emi, periodicRate decimal.Decimal, numPeriods int) (decimal.Decimal, error) {
	switch {
	case !emi.IsPositive():
		return decimal.Zero, invalid("emi", "must be greater than zero")
	case periodicRate.IsNegative():
		return decimal.Zero, invalid("rate", "must not be negative")
	case numPeriods <= 0:
		return decimal.Zero, invalid("tenure", "must be greater than zero")
	}
	n := decimal.NewFromInt(int64(numPeriods))
	if periodicRate.IsZero() {
		return emi.Mul(n).Truncate(MoneyPlaces), nil
	}
	f := growth(periodicRate, numPeriods)
	return emi.Mul(f.Sub(one)).DivRound(periodicRate.Mul(f), ratePlaces).Truncate(MoneyPlaces), nil
}
