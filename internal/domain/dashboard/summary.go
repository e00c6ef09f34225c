// Package dashboard aggregates a borrower's applications, loans and transactions into
// read-only views. Nothing here is stored; every call recomputes from the records.
package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"pocketcredit-backend/internal/domain/amortization"
	"pocketcredit-backend/internal/domain/applicant"
	"pocketcredit-backend/internal/domain/loan"
)

const recentTransactions = 5

// day-tenure installments are scaled to a 30-day month for the monthly obligation.
var daysPerMonth = decimal.NewFromInt(30)

type Input struct {
	Applications   []loan.Application
	Loans          []loan.Loan
	Transactions   []loan.Transaction
	Documents      []applicant.Document
	KYCComplete    bool
	AsOf           time.Time
	UpcomingWindow time.Duration
}

type LoanStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

const (
	TaskKYC              = "complete_kyc"
	TaskDocumentPending  = "document_pending"
	TaskDocumentRejected = "document_rejected"
	TaskEMIDue           = "emi_due"
	TaskEMIOverdue       = "emi_overdue"
)

type Task struct {
	Kind      string           `json:"kind"`
	Title     string           `json:"title"`
	Reference string           `json:"reference,omitempty"`
	DueDate   *time.Time       `json:"due_date,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
}

type Summary struct {
	StatusCounts       map[loan.Status]int `json:"status_counts"`
	Stats              LoanStats           `json:"loan_stats"`
	TotalOutstanding   decimal.Decimal     `json:"total_outstanding"`
	MonthlyObligation  decimal.Decimal     `json:"monthly_obligation"`
	NextEMIDate        *time.Time          `json:"next_emi_date,omitempty"`
	NextEMIAmount      *decimal.Decimal    `json:"next_emi_amount,omitempty"`
	PendingTasks       []Task              `json:"pending_tasks"`
	RecentTransactions []loan.Transaction  `json:"recent_transactions"`
}

func inRepayment(s loan.Status) bool { return s == loan.StatusDisbursed || s == loan.StatusActive }

func Summarize(in Input) Summary {
	s := Summary{
		StatusCounts:       map[loan.Status]int{},
		TotalOutstanding:   decimal.Zero,
		MonthlyObligation:  decimal.Zero,
		PendingTasks:       []Task{},
		RecentTransactions: []loan.Transaction{},
	}

	for _, a := range in.Applications {
		s.StatusCounts[a.Status]++
		s.Stats.Total++
		switch {
		case a.Status == loan.StatusSubmitted || a.Status == loan.StatusUnderReview || a.Status == loan.StatusApproved:
			s.Stats.Pending++
		case inRepayment(a.Status):
			s.Stats.Active++
		case a.Status == loan.StatusCompleted:
			s.Stats.Completed++
		}
	}

	if !in.KYCComplete {
		s.PendingTasks = append(s.PendingTasks, Task{Kind: TaskKYC, Title: "Complete identity and bank account verification"})
	}
	for _, doc := range in.Documents {
		switch doc.Status {
		case applicant.DocumentPending:
			s.PendingTasks = append(s.PendingTasks, Task{Kind: TaskDocumentPending,
				Title: fmt.Sprintf("%s is awaiting verification", doc.Name), Reference: doc.DocumentID})
		case applicant.DocumentRejected:
			title := fmt.Sprintf("%s was rejected, upload it again", doc.Name)
			if doc.Remarks != "" {
				title += ": " + doc.Remarks
			}
			s.PendingTasks = append(s.PendingTasks, Task{Kind: TaskDocumentRejected, Title: title, Reference: doc.DocumentID})
		}
	}

	horizon := in.AsOf.Add(in.UpcomingWindow)
	for i := range in.Loans {
		l := &in.Loans[i]
		if !inRepayment(l.Status) {
			continue
		}
		s.TotalOutstanding = s.TotalOutstanding.Add(l.ApproxOutstanding())
		if l.Terms.TenureUnit == amortization.UnitDay {
			s.MonthlyObligation = s.MonthlyObligation.Add(l.EMI.Mul(daysPerMonth))
		} else {
			s.MonthlyObligation = s.MonthlyObligation.Add(l.EMI)
		}

		due, ok := l.NextDueDate()
		if !ok {
			continue
		}
		if s.NextEMIDate == nil || due.Before(*s.NextEMIDate) {
			dueCopy, emi := due, l.EMI
			s.NextEMIDate, s.NextEMIAmount = &dueCopy, &emi
		}
		if due.After(horizon) {
			continue
		}
		dueCopy, emi := due, l.EMI
		task := Task{Kind: TaskEMIDue, Title: fmt.Sprintf("EMI %d due", l.PaidInstallments+1),
			Reference: l.LoanID, DueDate: &dueCopy, Amount: &emi}
		if due.Before(in.AsOf) {
			task.Kind = TaskEMIOverdue
			task.Title = fmt.Sprintf("EMI %d overdue", l.PaidInstallments+1)
		}
		s.PendingTasks = append(s.PendingTasks, task)
	}

	txns := append([]loan.Transaction(nil), in.Transactions...)
	sort.SliceStable(txns, func(i, j int) bool { return txns[i].CreatedAt.After(txns[j].CreatedAt) })
	if len(txns) > recentTransactions {
		txns = txns[:recentTransactions]
	}
	s.RecentTransactions = append(s.RecentTransactions, txns...)
	return s
}
