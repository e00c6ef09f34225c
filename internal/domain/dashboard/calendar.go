package dashboard

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"pocketcredit-backend/internal/domain/loan"
)

const (
	EntryEMI     = "emi"
	EntryPayment = "payment"

	EntryPaid     = "paid"
	EntryUpcoming = "upcoming"
	EntryOverdue  = "overdue"
)

type CalendarEntry struct {
	Date        time.Time       `json:"date"`
	Kind        string          `json:"kind"`
	Reference   string          `json:"reference"`
	Installment int             `json:"installment,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
}

type Calendar struct {
	Year      int             `json:"year"`
	Month     time.Month      `json:"month"`
	Entries   []CalendarEntry `json:"entries"`
	TotalDue  decimal.Decimal `json:"total_due"`
	TotalPaid decimal.Decimal `json:"total_paid"`
}

// PaymentCalendar lists scheduled installments and settled repayments that fall in
// the given month.
func PaymentCalendar(loans []loan.Loan, txns []loan.Transaction, year int, month time.Month, asOf time.Time) (Calendar, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, asOf.Location())
	end := start.AddDate(0, 1, 0)
	within := func(t time.Time) bool { return !t.Before(start) && t.Before(end) }

	cal := Calendar{Year: year, Month: month, Entries: []CalendarEntry{}, TotalDue: decimal.Zero, TotalPaid: decimal.Zero}

	for i := range loans {
		l := &loans[i]
		if l.DisbursalDate == nil {
			continue
		}
		schedule, err := l.Schedule()
		if err != nil {
			return Calendar{}, err
		}
		for _, e := range schedule {
			if !within(e.DueDate) {
				continue
			}
			status := EntryUpcoming
			switch {
			case e.Paid:
				status = EntryPaid
			case l.Status.Terminal():
				continue
			case e.DueDate.Before(asOf):
				status = EntryOverdue
			}
			cal.Entries = append(cal.Entries, CalendarEntry{
				Date: e.DueDate, Kind: EntryEMI, Reference: l.LoanID,
				Installment: e.Index, Amount: e.EMI, Status: status,
			})
			if status != EntryPaid {
				cal.TotalDue = cal.TotalDue.Add(e.EMI)
			}
		}
	}

	for _, t := range txns {
		if t.Kind != loan.KindRepayment || t.Status != loan.TxnCompleted || !within(t.CreatedAt) {
			continue
		}
		paid := t.Amount.Abs()
		cal.Entries = append(cal.Entries, CalendarEntry{
			Date: t.CreatedAt, Kind: EntryPayment, Reference: t.Reference, Amount: paid, Status: EntryPaid,
		})
		cal.TotalPaid = cal.TotalPaid.Add(paid)
	}

	sort.SliceStable(cal.Entries, func(i, j int) bool { return cal.Entries[i].Date.Before(cal.Entries[j].Date) })
	return cal, nil
}
