package dashboard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketcredit-backend/internal/domain/amortization"
	"pocketcredit-backend/internal/domain/applicant"
	"pocketcredit-backend/internal/domain/loan"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var asOf = time.Date(2024, time.June, 5, 12, 0, 0, 0, time.UTC)

func activeLoan(id string, disbursed time.Time, paid int) loan.Loan {
	return loan.Loan{
		LoanID:           id,
		Terms:            loan.Terms{Principal: d("100000"), Rate: d("0.14"), TenureUnits: 12, TenureUnit: amortization.UnitMonth},
		EMI:              d("8978.71"),
		DisbursalDate:    &disbursed,
		PaidInstallments: paid,
		Status:           loan.StatusActive,
	}
}

func kinds(ts []Task) []string {
	out := []string{}
	for _, t := range ts {
		out = append(out, t.Kind)
	}
	return out
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(Input{AsOf: asOf, KYCComplete: true})
	assert.Equal(t, 0, s.Stats.Total)
	assert.True(t, s.TotalOutstanding.IsZero())
	assert.Nil(t, s.NextEMIDate)
	assert.Empty(t, s.PendingTasks)
	assert.NotNil(t, s.RecentTransactions)
}

func TestSummarize(t *testing.T) {
	apps := []loan.Application{
		{Status: loan.StatusActive},
		{Status: loan.StatusCompleted},
		{Status: loan.StatusRejected},
		{Status: loan.StatusCompleted},
	}
	loans := []loan.Loan{
		activeLoan("a", time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC), 2),
		{LoanID: "done", Terms: loan.Terms{Principal: d("5000"), TenureUnits: 1, TenureUnit: amortization.UnitMonth}, EMI: d("5000"), Status: loan.StatusCompleted},
	}
	docs := []applicant.Document{
		{DocumentID: "d1", Name: "PAN card", Status: applicant.DocumentPending},
		{DocumentID: "d2", Name: "Payslip", Status: applicant.DocumentRejected, Remarks: "blurry"},
		{DocumentID: "d3", Name: "Aadhaar", Status: applicant.DocumentVerified},
	}
	var txns []loan.Transaction
	for i := 0; i < 7; i++ {
		txns = append(txns, loan.Transaction{TxnID: string(rune('a' + i)), CreatedAt: asOf.AddDate(0, 0, -i)})
	}

	s := Summarize(Input{
		Applications:   apps,
		Loans:          loans,
		Transactions:   txns,
		Documents:      docs,
		KYCComplete:    false,
		AsOf:           asOf,
		UpcomingWindow: 7 * 24 * time.Hour,
	})

	assert.Equal(t, LoanStats{Total: 4, Active: 1, Pending: 0, Completed: 2}, s.Stats)
	assert.Equal(t, 2, s.StatusCounts[loan.StatusCompleted])
	assert.Equal(t, "82042.58", s.TotalOutstanding.StringFixed(2))
	assert.Equal(t, "8978.71", s.MonthlyObligation.StringFixed(2))

	require.NotNil(t, s.NextEMIDate)
	assert.Equal(t, time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC), *s.NextEMIDate)

	assert.Equal(t, []string{TaskKYC, TaskDocumentPending, TaskDocumentRejected}, kinds(s.PendingTasks))
	assert.Contains(t, s.PendingTasks[2].Title, "blurry")

	require.Len(t, s.RecentTransactions, 5)
	assert.Equal(t, "a", s.RecentTransactions[0].TxnID)
	assert.Equal(t, "e", s.RecentTransactions[4].TxnID)
}

func TestSummarize_EMITasks(t *testing.T) {
	loans := []loan.Loan{
		activeLoan("soon", time.Date(2024, time.April, 8, 0, 0, 0, 0, time.UTC), 1), // next due Jun 8
		activeLoan("late", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), 1), // next due May 1
		activeLoan("later", time.Date(2024, time.May, 30, 0, 0, 0, 0, time.UTC), 0), // next due Jun 30
	}
	s := Summarize(Input{Loans: loans, KYCComplete: true, AsOf: asOf, UpcomingWindow: 7 * 24 * time.Hour})

	assert.ElementsMatch(t, []string{TaskEMIDue, TaskEMIOverdue}, kinds(s.PendingTasks))
	require.NotNil(t, s.NextEMIDate)
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), *s.NextEMIDate)
	assert.Equal(t, "26936.13", s.MonthlyObligation.StringFixed(2))
}

func TestSummarize_NegativeOutstandingClamped(t *testing.T) {
	l := activeLoan("x", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), 11)
	l.EMI = d("9500")
	s := Summarize(Input{Loans: []loan.Loan{l}, KYCComplete: true, AsOf: asOf})
	assert.True(t, s.TotalOutstanding.IsZero())
}

func TestPaymentCalendar(t *testing.T) {
	l := activeLoan("a", time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC), 2)
	txns := []loan.Transaction{
		{Kind: loan.KindRepayment, Status: loan.TxnCompleted, Amount: d("-8978.71"), Reference: "a", CreatedAt: time.Date(2024, time.May, 19, 0, 0, 0, 0, time.UTC)},
		{Kind: loan.KindRepayment, Status: loan.TxnFailed, Amount: d("-10"), Reference: "a", CreatedAt: time.Date(2024, time.May, 18, 0, 0, 0, 0, time.UTC)},
		{Kind: loan.KindDisbursal, Status: loan.TxnCompleted, Amount: d("100000"), Reference: "a", CreatedAt: time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)},
	}

	may, err := PaymentCalendar([]loan.Loan{l}, txns, 2024, time.May, asOf)
	require.NoError(t, err)
	require.Len(t, may.Entries, 2)
	assert.Equal(t, EntryPayment, may.Entries[0].Kind)
	assert.Equal(t, "8978.71", may.Entries[0].Amount.StringFixed(2))
	assert.Equal(t, EntryEMI, may.Entries[1].Kind)
	assert.Equal(t, EntryPaid, may.Entries[1].Status)
	assert.Equal(t, 2, may.Entries[1].Installment)
	assert.True(t, may.TotalDue.IsZero())
	assert.Equal(t, "8978.71", may.TotalPaid.StringFixed(2))

	june, err := PaymentCalendar([]loan.Loan{l}, txns, 2024, time.June, asOf)
	require.NoError(t, err)
	require.Len(t, june.Entries, 1)
	assert.Equal(t, EntryUpcoming, june.Entries[0].Status)
	assert.Equal(t, "8978.71", june.TotalDue.StringFixed(2))

	l.PaidInstallments = 1
	mayLate, err := PaymentCalendar([]loan.Loan{l}, nil, 2024, time.May, asOf)
	require.NoError(t, err)
	require.Len(t, mayLate.Entries, 1)
	assert.Equal(t, EntryOverdue, mayLate.Entries[0].Status)
}
