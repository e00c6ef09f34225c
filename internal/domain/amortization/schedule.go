package amortization

import (
	"time"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
)

// Entry is one installment of a repayment schedule. Schedules are derived on demand
// and never stored.
type Entry struct {
	Index            int             `json:"index"`
	DueDate          time.Time       `json:"due_date"`
	EMI              decimal.Decimal `json:"emi"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Paid             bool            `json:"paid"`
}

// BuildSchedule lays out the reducing-balance schedule for the EMI of the given terms.
// The last installment absorbs rounding drift so the balance ends at exactly zero.
func BuildSchedule(principal, periodicRate decimal.Decimal, numPeriods int) ([]Entry, error) {
	emi, err := ComputeEMI(principal, periodicRate, numPeriods)
	if err != nil {
		return nil, err
	}
	return buildWithEMI(principal, periodicRate, numPeriods, emi), nil
}

func buildWithEMI(principal, periodicRate decimal.Decimal, numPeriods int, emi decimal.Decimal) []Entry {
	entries := make([]Entry, 0, numPeriods)
	balance := principal
	for i := 1; i <= numPeriods; i++ {
		interest := RoundMoney(balance.Mul(periodicRate))
		principalPart := emi.Sub(interest)
		installment := emi

		last := i == numPeriods || principalPart.GreaterThanOrEqual(balance)
		if last {
			principalPart = balance
			installment = principalPart.Add(interest)
		}
		balance = balance.Sub(principalPart)

		entries = append(entries, Entry{
			Index:            i,
			EMI:              installment,
			Principal:        principalPart,
			Interest:         interest,
			RemainingBalance: balance,
		})
		if last {
			break
		}
	}
	return entries
}

// AttachDueDates returns a copy of entries with due dates counted from start and the
// first paid entries flagged as paid.
func AttachDueDates(entries []Entry, start time.Time, unit TenureUnit, paid int) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		e.DueDate = AddPeriods(start, unit, e.Index)
		e.Paid = e.Index <= paid
		out[i] = e
	}
	return out
}

// AddPeriods moves start forward by k installment periods. Month steps keep the day of
// month and clamp it to the last day of shorter months (Jan 31 + 1 month = Feb 28/29).
func AddPeriods(start time.Time, unit TenureUnit, k int) time.Time {
	if unit == UnitDay {
		return start.AddDate(0, 0, k)
	}
	first := now.With(start).BeginningOfMonth().AddDate(0, k, 0)
	lastDay := now.With(first).EndOfMonth().Day()
	day := start.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day,
		start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), start.Location())
}
