package loan

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pocketcredit-backend/internal/domain/amortization"
	"pocketcredit-backend/internal/domain/eligibility"
	"pocketcredit-backend/internal/domain/history"
	"pocketcredit-backend/pkg/id"
)

var transitions = map[Status][]Status{
	StatusSubmitted:   {StatusUnderReview, StatusRejected, StatusCancelled},
	StatusUnderReview: {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:    {StatusDisbursed, StatusCancelled, StatusRejected},
	StatusDisbursed:   {StatusActive},
	StatusActive:      {StatusCompleted, StatusDefaulted},
	StatusCompleted:   nil,
	StatusRejected:    nil,
	StatusCancelled:   nil,
	StatusDefaulted:   nil,
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Outcome is what a lifecycle operation produced. The caller persists all of it in
// the same database transaction as the updated application and loan.
type Outcome struct {
	Events       []history.Event
	Transactions []Transaction
	// SettleFees, when set, moves pending fee transactions to this status.
	SettleFees TxnStatus
}

// move applies a transition to the application and, when present, its loan.
func move(app *Application, l *Loan, to Status, reason string, now time.Time, out *Outcome) error {
	from := app.Status
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	app.Status = to
	if l != nil {
		l.Status = to
	}
	out.Events = append(out.Events, history.Event{
		EventID:       id.NewID32(),
		ApplicationID: app.ID,
		From:          string(from),
		To:            string(to),
		Reason:        reason,
		OccurredAt:    now,
	})
	return nil
}

func newTxn(app *Application, kind TxnKind, amount decimal.Decimal, status TxnStatus, ref, desc string, now time.Time) Transaction {
	return Transaction{
		TxnID:         id.NewID32(),
		ApplicationID: app.ID,
		UserID:        app.UserID,
		Kind:          kind,
		Amount:        amount,
		Status:        status,
		Reference:     ref,
		Description:   desc,
		CreatedAt:     now,
	}
}

type SubmitInput struct {
	UserID      string
	Terms       Terms
	Purpose     string
	Eligibility eligibility.Result
	// Open holds the user's applications in a non-terminal status.
	Open []Application
	Fees amortization.Fees
	Now  time.Time
}

// Submit opens a new application and books its origination fee as pending.
func Submit(in SubmitInput) (*Application, Outcome, error) {
	var out Outcome
	if len(in.Open) > 0 {
		return nil, out, &ConcurrentApplicationError{UserID: in.UserID, ApplicationID: in.Open[0].ApplicationID}
	}
	if !in.Eligibility.IsEligible || in.Eligibility.Tier == nil {
		return nil, out, &EligibilityBlockedError{Reasons: in.Eligibility.BlockingReasons, Warnings: in.Eligibility.Warnings}
	}
	tier := in.Eligibility.Tier
	terms := in.Terms
	terms.Rate = tier.Rate
	terms.TenureUnit = tier.TenureUnit

	app := &Application{
		ApplicationID: id.NewID32(),
		UserID:        in.UserID,
		Terms:         terms,
		Purpose:       strings.TrimSpace(in.Purpose),
		TierName:      tier.Name,
		Status:        StatusSubmitted,
		ProcessingFee: in.Fees.ProcessingFee,
		GST:           in.Fees.GST,
		Insurance:     in.Fees.Insurance,
		AppliedAt:     in.Now,
	}
	out.Events = append(out.Events, history.Event{
		EventID:    id.NewID32(),
		To:         string(StatusSubmitted),
		OccurredAt: in.Now,
	})
	if in.Fees.Total.IsPositive() {
		out.Transactions = append(out.Transactions, newTxn(app, KindFee, in.Fees.Total.Neg(), TxnPending,
			app.ApplicationID, "Processing fee, GST and insurance", in.Now))
	}
	return app, out, nil
}

func StartReview(app *Application, now time.Time) (Outcome, error) {
	var out Outcome
	err := move(app, nil, StatusUnderReview, "", now, &out)
	return out, err
}

// Approve opens the loan account. The rate is taken from the tier's current rate card
// and locked into the loan's terms. others are the user's other open applications.
func Approve(app *Application, elig eligibility.Result, others []Application, tier eligibility.Tier, now time.Time) (*Loan, Outcome, error) {
	var out Outcome
	if !CanTransition(app.Status, StatusApproved) {
		return nil, out, &InvalidTransitionError{From: app.Status, To: StatusApproved}
	}
	if len(others) > 0 {
		return nil, out, &ConcurrentApplicationError{UserID: app.UserID, ApplicationID: others[0].ApplicationID}
	}
	if !elig.IsEligible {
		return nil, out, &EligibilityBlockedError{Reasons: elig.BlockingReasons, Warnings: elig.Warnings}
	}

	terms := app.Terms
	terms.Rate = tier.Rate
	terms.TenureUnit = tier.TenureUnit
	r, err := terms.PeriodicRate()
	if err != nil {
		return nil, out, err
	}
	emi, err := amortization.ComputeEMI(terms.Principal, r, terms.TenureUnits)
	if err != nil {
		return nil, out, err
	}

	l := &Loan{
		LoanID:        id.NewID32(),
		ApplicationID: app.ID,
		UserID:        app.UserID,
		Terms:         terms,
		EMI:           emi,
		ApprovedAt:    now,
	}
	if err := move(app, l, StatusApproved, "", now, &out); err != nil {
		return nil, out, err
	}
	app.Terms = terms
	app.DecisionAt = &now
	return l, out, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Disburse pays the principal out to the borrower's verified bank account.
func Disburse(app *Application, l *Loan, disbursalDate time.Time, bankVerified bool, now time.Time) (Outcome, error) {
	var out Outcome
	if !CanTransition(app.Status, StatusDisbursed) {
		return out, &InvalidTransitionError{From: app.Status, To: StatusDisbursed}
	}
	if l == nil {
		return out, ErrNotFound
	}
	if !bankVerified {
		return out, ErrBankAccountUnverified
	}
	if disbursalDate.IsZero() || dateOnly(disbursalDate).Before(dateOnly(l.ApprovedAt.In(disbursalDate.Location()))) {
		return out, ErrInvalidDisbursalDate
	}
	if err := move(app, l, StatusDisbursed, "", now, &out); err != nil {
		return out, err
	}
	date := dateOnly(disbursalDate)
	l.DisbursalDate = &date
	out.Transactions = append(out.Transactions, newTxn(app, KindDisbursal, l.Terms.Principal, TxnCompleted,
		l.LoanID, "Loan disbursal", now))
	out.SettleFees = TxnCompleted
	return out, nil
}

// Activate starts repayment once graceDays have passed since disbursal.
func Activate(app *Application, l *Loan, graceDays int, now time.Time) (Outcome, error) {
	var out Outcome
	if !CanTransition(app.Status, StatusActive) {
		return out, &InvalidTransitionError{From: app.Status, To: StatusActive}
	}
	if l == nil {
		return out, ErrNotFound
	}
	if l.DisbursalDate == nil {
		return out, ErrInvalidDisbursalDate
	}
	if now.Before(l.DisbursalDate.AddDate(0, 0, graceDays)) {
		return out, ErrGracePeriodPending
	}
	if err := move(app, l, StatusActive, "", now, &out); err != nil {
		return out, err
	}
	l.ActivatedAt = &now
	return out, nil
}

type Repayment struct {
	Applied     bool            `json:"applied"`
	Installment int             `json:"installment"`
	Due         decimal.Decimal `json:"amount_due"`
	Paid        decimal.Decimal `json:"amount_paid"`
	Completed   bool            `json:"loan_completed"`
}

// ApplyRepayment settles the next installment. An amount short of the installment is
// recorded as a failed transaction and leaves the loan unchanged.
func ApplyRepayment(app *Application, l *Loan, amount decimal.Decimal, now time.Time) (Repayment, Outcome, error) {
	var out Outcome
	if !amount.IsPositive() {
		return Repayment{}, out, ErrInvalidAmount
	}
	if app.Status != StatusActive || l == nil {
		return Repayment{}, out, ErrNotActive
	}
	schedule, err := l.Schedule()
	if err != nil {
		return Repayment{}, out, err
	}
	idx := l.PaidInstallments
	if idx >= len(schedule) {
		return Repayment{}, out, ErrNotActive
	}
	entry := schedule[idx]
	rep := Repayment{Installment: entry.Index, Due: entry.EMI}

	if amount.LessThan(entry.EMI) {
		out.Transactions = append(out.Transactions, newTxn(app, KindRepayment, amount.Neg(), TxnFailed, l.LoanID,
			fmt.Sprintf("EMI %d of %d: amount below installment due", entry.Index, len(schedule)), now))
		return rep, out, nil
	}

	out.Transactions = append(out.Transactions, newTxn(app, KindRepayment, entry.EMI.Neg(), TxnCompleted, l.LoanID,
		fmt.Sprintf("EMI %d of %d", entry.Index, len(schedule)), now))
	l.PaidInstallments++
	rep.Applied = true
	rep.Paid = entry.EMI

	if l.PaidInstallments >= len(schedule) || entry.RemainingBalance.IsZero() {
		if err := move(app, l, StatusCompleted, "all installments paid", now, &out); err != nil {
			return Repayment{}, Outcome{}, err
		}
		l.ClosedAt = &now
		rep.Completed = true
	}
	return rep, out, nil
}

// QuotePreclosure prices early settlement of an active loan.
func QuotePreclosure(l *Loan, chargeRate decimal.Decimal) (amortization.PreclosureQuote, error) {
	r, err := l.Terms.PeriodicRate()
	if err != nil {
		return amortization.PreclosureQuote{}, err
	}
	return amortization.ComputePreclosure(l.Terms.Principal, r, l.Terms.TenureUnits, l.PaidInstallments, l.EMI, chargeRate)
}

// Preclose settles the loan early: outstanding principal plus pre-closure charges.
func Preclose(app *Application, l *Loan, chargeRate decimal.Decimal, minPaid int, now time.Time) (amortization.PreclosureQuote, Outcome, error) {
	var out Outcome
	if app.Status != StatusActive || l == nil {
		return amortization.PreclosureQuote{}, out, ErrNotActive
	}
	if l.PaidInstallments < minPaid {
		return amortization.PreclosureQuote{}, out, ErrPreclosureNotEligible
	}
	q, err := QuotePreclosure(l, chargeRate)
	if err != nil {
		return q, out, err
	}
	if err := move(app, l, StatusCompleted, "pre-closed", now, &out); err != nil {
		return q, out, err
	}
	if q.OutstandingPrincipal.IsPositive() {
		out.Transactions = append(out.Transactions, newTxn(app, KindRepayment, q.OutstandingPrincipal.Neg(), TxnCompleted,
			l.LoanID, "Pre-closure settlement", now))
	}
	if q.Charges.IsPositive() {
		out.Transactions = append(out.Transactions, newTxn(app, KindFee, q.Charges.Neg(), TxnCompleted,
			l.LoanID, "Pre-closure charges", now))
	}
	l.ClosedAt = &now
	return q, out, nil
}

// Cancel withdraws the application at the borrower's request.
func Cancel(app *Application, l *Loan, reason string, now time.Time) (Outcome, error) {
	var out Outcome
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return out, ErrReasonRequired
	}
	if err := move(app, l, StatusCancelled, reason, now, &out); err != nil {
		return out, err
	}
	app.CancellationReason = reason
	if l != nil {
		l.ClosedAt = &now
	}
	out.SettleFees = TxnFailed
	return out, nil
}

// Reject declines the application.
func Reject(app *Application, l *Loan, reason string, now time.Time) (Outcome, error) {
	var out Outcome
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return out, ErrReasonRequired
	}
	if err := move(app, l, StatusRejected, reason, now, &out); err != nil {
		return out, err
	}
	app.DecisionReason = reason
	app.DecisionAt = &now
	if l != nil {
		l.ClosedAt = &now
	}
	out.SettleFees = TxnFailed
	return out, nil
}

// MarkDefaulted closes an active loan whose next installment is past due.
func MarkDefaulted(app *Application, l *Loan, now time.Time) (Outcome, error) {
	var out Outcome
	if !CanTransition(app.Status, StatusDefaulted) {
		return out, &InvalidTransitionError{From: app.Status, To: StatusDefaulted}
	}
	if l == nil {
		return out, ErrNotFound
	}
	due, ok := l.NextDueDate()
	if !ok || !now.After(due) {
		return out, ErrNotOverdue
	}
	if err := move(app, l, StatusDefaulted, fmt.Sprintf("installment %d overdue since %s", l.PaidInstallments+1, due.Format("2006-01-02")), now, &out); err != nil {
		return out, err
	}
	l.ClosedAt = &now
	return out, nil
}
