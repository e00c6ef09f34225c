// Package loan runs the lending lifecycle against storage: every check-then-act on a
// user's applications happens under the user's Redis lock and a row-locked database
// transaction, and every transition is written with its history and transactions.
package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pocketcredit-backend/internal/domain/amortization"
	"pocketcredit-backend/internal/domain/applicant"
	"pocketcredit-backend/internal/domain/eligibility"
	domain "pocketcredit-backend/internal/domain/loan"
	"pocketcredit-backend/internal/domain/uow"
	"pocketcredit-backend/internal/domain/verification"
	"pocketcredit-backend/internal/infrastructure/cache"
	"pocketcredit-backend/internal/infrastructure/metrics"
	applicantuc "pocketcredit-backend/internal/usecase/applicant"
)

const (
	actorUser  = "user"
	actorAdmin = "admin"

	defaultPageSize = 10
)

// operator names the back-office actor recorded in history.
func operator(operatorID string) string {
	if operatorID == "" {
		return actorAdmin
	}
	return actorAdmin + ":" + operatorID
}

// Locker serializes work per user across instances.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

type Options struct {
	DefaultTier          string
	PreclosureChargeRate decimal.Decimal
	PreclosureMinPaid    int
	ActivationGraceDays  int
}

type Usecase struct {
	uow     uow.UnitOfWork
	eval    *eligibility.Evaluator
	lock    Locker
	metrics *metrics.Metrics
	log     *zap.Logger
	opts    Options
	now     func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, eval *eligibility.Evaluator, lock Locker, m *metrics.Metrics, log *zap.Logger, opts Options) *Usecase {
	return &Usecase{
		uow:     tx,
		eval:    eval,
		lock:    lock,
		metrics: m,
		log:     log,
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func toEligibility(a *applicant.Applicant) eligibility.Applicant {
	return eligibility.Applicant{
		TierName:            a.TierName,
		MonthlyIncome:       a.MonthlyIncome,
		IncomeVerified:      a.IncomeVerified,
		IdentityVerified:    a.IdentityVerified,
		BankAccountVerified: a.BankAccountVerified,
		EmailVerified:       a.EmailVerified,
		PhoneVerified:       a.PhoneVerified,
	}
}

func (u *Usecase) request(a *applicant.Applicant, amount decimal.Decimal, tenure int, unit amortization.TenureUnit) eligibility.Request {
	if unit == "" {
		if t, ok := u.eval.RateCard().Lookup(a.TierName); ok {
			unit = t.TenureUnit
		}
	}
	return eligibility.Request{Amount: amount, Tenure: tenure, Unit: unit}
}

func eligibilityDTO(a *applicant.Applicant, res eligibility.Result) *EligibilityDTO {
	dto := &EligibilityDTO{
		IsEligible:      res.IsEligible,
		TierName:        a.TierName,
		BlockingReasons: res.BlockingReasons,
		Warnings:        res.Warnings,
		Projection:      res.Projection,
		Affordability:   res.Affordability,
	}
	if dto.BlockingReasons == nil {
		dto.BlockingReasons = []eligibility.Reason{}
	}
	if dto.Warnings == nil {
		dto.Warnings = []eligibility.Reason{}
	}
	return dto
}

// Eligibility evaluates a prospective request without writing anything but the
// profile of a first-time user.
func (u *Usecase) Eligibility(ctx context.Context, userID string, in EligibilityInput) (*EligibilityDTO, error) {
	a, err := applicantuc.Ensure(ctx, u.uow, userID, u.opts.DefaultTier)
	if err != nil {
		return nil, err
	}
	var open []domain.Application
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		open, err = r.Applications.ListOpenByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list open applications: %w", err)
	}
	res := u.eval.Evaluate(toEligibility(a), u.request(a, in.Amount, in.Tenure, in.Unit), len(open))
	u.metrics.Eligibility(res.IsEligible)
	return eligibilityDTO(a, res), nil
}

// Offers prices the rate card against the user's verified income.
func (u *Usecase) Offers(ctx context.Context, userID string) (*OffersDTO, error) {
	a, err := applicantuc.Ensure(ctx, u.uow, userID, u.opts.DefaultTier)
	if err != nil {
		return nil, err
	}
	dto := &OffersDTO{TierName: a.TierName, Offers: u.eval.Offers(toEligibility(a))}
	if a.CreditCheckedAt != nil {
		score := a.CreditScore
		dto.CreditScore = &score
		dto.CreditBand = verification.ScoreBand(score)
	}
	return dto, nil
}

// Transactions pages through every transaction of the user, newest first.
func (u *Usecase) Transactions(ctx context.Context, userID string, q TransactionQuery) (*TransactionPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageSize
	}
	page := &TransactionPage{Page: q.Page, Limit: q.Limit}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		page.Transactions, page.Total, err = r.Transactions.Search(ctx, domain.TxnFilter{
			UserID: userID,
			Kind:   q.Kind,
			Status: q.Status,
			Limit:  q.Limit,
			Offset: (q.Page - 1) * q.Limit,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if page.Transactions == nil {
		page.Transactions = []domain.Transaction{}
	}
	return page, nil
}

// acquire takes the user's lock. Contention means another mutation for the same user
// is in flight and is reported as a concurrent application.
func (u *Usecase) acquire(ctx context.Context, userID string) (func(), error) {
	release, err := u.lock.Acquire(ctx, "user:"+userID)
	if errors.Is(err, cache.ErrLockHeld) {
		u.metrics.LockContention()
		return nil, &domain.ConcurrentApplicationError{UserID: userID}
	}
	if err != nil {
		return nil, fmt.Errorf("acquire user lock: %w", err)
	}
	return release, nil
}

// persist writes what a lifecycle operation produced. Events and transactions built
// before the application had a row get its ID here.
func (u *Usecase) persist(ctx context.Context, r uow.Repos, app *domain.Application, out domain.Outcome, actor string) error {
	if out.SettleFees != "" {
		if err := r.Transactions.SettlePending(ctx, app.ID, domain.KindFee, out.SettleFees); err != nil {
			return fmt.Errorf("settle fees: %w", err)
		}
	}
	for i := range out.Transactions {
		t := &out.Transactions[i]
		t.ApplicationID = app.ID
		if err := r.Transactions.Create(ctx, t); err != nil {
			return fmt.Errorf("record transaction: %w", err)
		}
	}
	for i := range out.Events {
		e := &out.Events[i]
		e.ApplicationID = app.ID
		e.Actor = actor
		if err := r.History.Create(ctx, e); err != nil {
			return fmt.Errorf("record status event: %w", err)
		}
	}
	return nil
}

func (u *Usecase) observe(app *domain.Application, out domain.Outcome, actor string) {
	for _, e := range out.Events {
		u.metrics.Transition(e.From, e.To)
		u.log.Info("loan transition",
			zap.String("loan_id", app.ApplicationID),
			zap.String("user_id", app.UserID),
			zap.String("from", e.From),
			zap.String("to", e.To),
			zap.String("actor", actor),
		)
	}
}

// Submit opens an application for the user.
func (u *Usecase) Submit(ctx context.Context, userID string, in SubmitInput) (*domain.Application, error) {
	if _, err := applicantuc.Ensure(ctx, u.uow, userID, u.opts.DefaultTier); err != nil {
		return nil, err
	}
	release, err := u.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		app *domain.Application
		out domain.Outcome
	)
	err = u.uow.WithinUserTx(ctx, userID, func(r uow.Repos, a *applicant.Applicant) error {
		open, err := r.Applications.ListOpenByUserID(ctx, userID)
		if err != nil {
			return err
		}
		res := u.eval.Evaluate(toEligibility(a), u.request(a, in.Amount, in.Tenure, in.Unit), len(open))
		u.metrics.Eligibility(res.IsEligible)

		var fees amortization.Fees
		if res.Projection != nil {
			fees = res.Projection.Fees
		}
		app, out, err = domain.Submit(domain.SubmitInput{
			UserID:      userID,
			Terms:       domain.Terms{Principal: in.Amount, TenureUnits: in.Tenure, TenureUnit: in.Unit},
			Purpose:     in.Purpose,
			Eligibility: res,
			Open:        open,
			Fees:        fees,
			Now:         u.now(),
		})
		if err != nil {
			return err
		}
		if err := r.Applications.Create(ctx, app); err != nil {
			return err
		}
		return u.persist(ctx, r, app, out, actorUser)
	})
	if err != nil {
		u.log.Warn("submit rejected", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	u.observe(app, out, actorUser)
	return app, nil
}

func (u *Usecase) List(ctx context.Context, userID string) ([]domain.Application, error) {
	var apps []domain.Application
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		apps, err = r.Applications.ListByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	return apps, nil
}

// load reads an application owned by userID, and its loan when one exists. Another
// user's application is reported as not found.
func load(ctx context.Context, r uow.Repos, userID, loanID string) (*domain.Application, *domain.Loan, error) {
	app, err := r.Applications.GetByApplicationID(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}
	if userID != "" && app.UserID != userID {
		return nil, nil, domain.ErrNotFound
	}
	l, err := r.Loans.GetByApplicationID(ctx, app.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return app, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return app, l, nil
}

func (u *Usecase) Get(ctx context.Context, userID, loanID string) (*LoanView, error) {
	var view LoanView
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		app, l, err := load(ctx, r, userID, loanID)
		if err != nil {
			return err
		}
		txns, err := r.Transactions.ListByApplicationID(ctx, app.ID)
		if err != nil {
			return err
		}
		view = LoanView{Application: *app, Loan: l, Transactions: txns}
		if view.Transactions == nil {
			view.Transactions = []domain.Transaction{}
		}
		if l != nil && (l.Status == domain.StatusDisbursed || l.Status == domain.StatusActive) {
			if due, ok := l.NextDueDate(); ok {
				view.NextDueDate = &due
			}
			out := l.ApproxOutstanding()
			view.Outstanding = &out
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (u *Usecase) Timeline(ctx context.Context, userID, loanID string) (*TimelineDTO, error) {
	dto := &TimelineDTO{LoanID: loanID}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		app, _, err := load(ctx, r, userID, loanID)
		if err != nil {
			return err
		}
		dto.Events, err = r.History.ListByApplicationID(ctx, app.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Schedule returns the loan's repayment schedule. Before approval it is indicative,
// priced on the application's terms.
func (u *Usecase) Schedule(ctx context.Context, userID, loanID string) (*ScheduleDTO, error) {
	var (
		app *domain.Application
		l   *domain.Loan
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		app, l, err = load(ctx, r, userID, loanID)
		return err
	})
	if err != nil {
		return nil, err
	}

	dto := &ScheduleDTO{LoanID: loanID}
	terms := app.Terms
	if l != nil {
		terms = l.Terms
		dto.EMI = l.EMI
		dto.Entries, err = l.Schedule()
	} else {
		dto.Indicative = true
		var r decimal.Decimal
		if r, err = terms.PeriodicRate(); err == nil {
			if dto.EMI, err = amortization.ComputeEMI(terms.Principal, r, terms.TenureUnits); err == nil {
				dto.Entries, err = amortization.BuildSchedule(terms.Principal, r, terms.TenureUnits)
			}
		}
	}
	if err != nil {
		return nil, err
	}
	// totals follow the rows so the final installment's rounding is included
	for _, e := range dto.Entries {
		dto.TotalPayable = dto.TotalPayable.Add(e.EMI)
		dto.TotalInterest = dto.TotalInterest.Add(e.Interest)
	}
	return dto, nil
}

func (u *Usecase) QuotePreclosure(ctx context.Context, userID, loanID string) (*PreclosureDTO, error) {
	var l *domain.Loan
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		_, l, err = load(ctx, r, userID, loanID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if l == nil || l.Status != domain.StatusActive {
		return nil, domain.ErrNotActive
	}
	q, err := domain.QuotePreclosure(l, u.opts.PreclosureChargeRate)
	if err != nil {
		return nil, err
	}
	return &PreclosureDTO{
		LoanID:              loanID,
		Eligible:            l.PaidInstallments >= u.opts.PreclosureMinPaid,
		MinPaidInstallments: u.opts.PreclosureMinPaid,
		Quote:               q,
	}, nil
}

// op is one lifecycle step run on a row-locked application.
type op struct {
	app *domain.Application
	// nil until approval; an op may set it
	loan *domain.Loan
	who  *applicant.Applicant
	r    uow.Repos
}

// mutate runs fn under the owner's lock and transaction and persists its outcome.
// An empty userID (back office) resolves the owner from the application.
func (u *Usecase) mutate(ctx context.Context, userID, loanID, actor string, fn func(o *op) (domain.Outcome, error)) (*op, error) {
	owner := userID
	if owner == "" {
		err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
			app, err := r.Applications.GetByApplicationID(ctx, loanID)
			if err != nil {
				return err
			}
			owner = app.UserID
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	release, err := u.acquire(ctx, owner)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		o   *op
		out domain.Outcome
	)
	err = u.uow.WithinUserTx(ctx, owner, func(r uow.Repos, who *applicant.Applicant) error {
		app, err := r.Applications.GetByApplicationIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if app.UserID != owner {
			return domain.ErrNotFound
		}
		l, err := r.Loans.GetByApplicationID(ctx, app.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		o = &op{app: app, loan: l, who: who, r: r}
		existing := l != nil

		out, err = fn(o)
		if err != nil {
			return err
		}
		if err := r.Applications.Save(ctx, o.app); err != nil {
			return err
		}
		if o.loan != nil {
			if existing {
				err = r.Loans.Save(ctx, o.loan)
			} else {
				err = r.Loans.Create(ctx, o.loan)
			}
			if err != nil {
				return err
			}
		}
		return u.persist(ctx, r, o.app, out, actor)
	})
	if err != nil {
		u.log.Warn("loan operation rejected",
			zap.String("loan_id", loanID), zap.String("actor", actor), zap.Error(err))
		return nil, err
	}
	u.observe(o.app, out, actor)
	return o, nil
}

func (u *Usecase) Cancel(ctx context.Context, userID, loanID, reason string) (*domain.Application, error) {
	o, err := u.mutate(ctx, userID, loanID, actorUser, func(o *op) (domain.Outcome, error) {
		return domain.Cancel(o.app, o.loan, reason, u.now())
	})
	if err != nil {
		return nil, err
	}
	return o.app, nil
}

// Pay attempts the next installment. A short payment is recorded as failed and is
// not an error.
func (u *Usecase) Pay(ctx context.Context, userID, loanID string, amount decimal.Decimal) (*RepaymentDTO, error) {
	dto := &RepaymentDTO{LoanID: loanID}
	var txns []domain.Transaction
	o, err := u.mutate(ctx, userID, loanID, actorUser, func(o *op) (domain.Outcome, error) {
		rep, out, err := domain.ApplyRepayment(o.app, o.loan, amount, u.now())
		dto.Result = rep
		// shares the backing array, so it sees the IDs persist assigns
		txns = out.Transactions
		return out, err
	})
	if err != nil {
		return nil, err
	}
	dto.Status = o.app.Status
	if len(txns) > 0 {
		dto.Txn = txns[0]
	}
	if dto.Result.Applied {
		u.metrics.Repayment(string(domain.TxnCompleted))
	} else {
		u.metrics.Repayment(string(domain.TxnFailed))
	}
	return dto, nil
}

func (u *Usecase) Preclose(ctx context.Context, userID, loanID string) (*PreclosureDTO, error) {
	dto := &PreclosureDTO{LoanID: loanID, MinPaidInstallments: u.opts.PreclosureMinPaid}
	_, err := u.mutate(ctx, userID, loanID, actorUser, func(o *op) (domain.Outcome, error) {
		q, out, err := domain.Preclose(o.app, o.loan, u.opts.PreclosureChargeRate, u.opts.PreclosureMinPaid, u.now())
		dto.Quote = q
		return out, err
	})
	if err != nil {
		return nil, err
	}
	dto.Eligible = true
	return dto, nil
}

// ---- back office ----

func (u *Usecase) StartReview(ctx context.Context, operatorID, loanID string) (*domain.Application, error) {
	o, err := u.mutate(ctx, "", loanID, operator(operatorID), func(o *op) (domain.Outcome, error) {
		return domain.StartReview(o.app, u.now())
	})
	if err != nil {
		return nil, err
	}
	return o.app, nil
}

// Approve re-evaluates eligibility on the current profile and rate card, then opens
// the loan account.
func (u *Usecase) Approve(ctx context.Context, operatorID, loanID string) (*LoanView, error) {
	o, err := u.mutate(ctx, "", loanID, operator(operatorID), func(o *op) (domain.Outcome, error) {
		open, err := o.r.Applications.ListOpenByUserID(ctx, o.app.UserID)
		if err != nil {
			return domain.Outcome{}, err
		}
		others := make([]domain.Application, 0, len(open))
		for _, a := range open {
			if a.ID != o.app.ID {
				others = append(others, a)
			}
		}
		req := eligibility.Request{Amount: o.app.Terms.Principal, Tenure: o.app.Terms.TenureUnits, Unit: o.app.Terms.TenureUnit}
		res := u.eval.Evaluate(toEligibility(o.who), req, len(others))
		var tier eligibility.Tier
		if res.Tier != nil {
			tier = *res.Tier
		}
		l, out, err := domain.Approve(o.app, res, others, tier, u.now())
		if err != nil {
			return out, err
		}
		o.loan = l
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return &LoanView{Application: *o.app, Loan: o.loan, Transactions: []domain.Transaction{}}, nil
}

func (u *Usecase) Reject(ctx context.Context, operatorID, loanID, reason string) (*domain.Application, error) {
	o, err := u.mutate(ctx, "", loanID, operator(operatorID), func(o *op) (domain.Outcome, error) {
		return domain.Reject(o.app, o.loan, reason, u.now())
	})
	if err != nil {
		return nil, err
	}
	return o.app, nil
}

// Disburse pays out the loan. Without a grace period the loan is activated in the
// same transaction once the disbursal date has been reached.
func (u *Usecase) Disburse(ctx context.Context, operatorID, loanID string, date time.Time) (*LoanView, error) {
	o, err := u.mutate(ctx, "", loanID, operator(operatorID), func(o *op) (domain.Outcome, error) {
		now := u.now()
		out, err := domain.Disburse(o.app, o.loan, date, o.who.BankAccountVerified, now)
		if err != nil || u.opts.ActivationGraceDays > 0 {
			return out, err
		}
		act, err := domain.Activate(o.app, o.loan, 0, now)
		if errors.Is(err, domain.ErrGracePeriodPending) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out.Events = append(out.Events, act.Events...)
		out.Transactions = append(out.Transactions, act.Transactions...)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return &LoanView{Application: *o.app, Loan: o.loan, Transactions: []domain.Transaction{}}, nil
}

func (u *Usecase) Activate(ctx context.Context, operatorID, loanID string) (*LoanView, error) {
	o, err := u.mutate(ctx, "", loanID, operator(operatorID), func(o *op) (domain.Outcome, error) {
		return domain.Activate(o.app, o.loan, u.opts.ActivationGraceDays, u.now())
	})
	if err != nil {
		return nil, err
	}
	return &LoanView{Application: *o.app, Loan: o.loan, Transactions: []domain.Transaction{}}, nil
}

func (u *Usecase) MarkDefaulted(ctx context.Context, operatorID, loanID string) (*LoanView, error) {
	o, err := u.mutate(ctx, "", loanID, operator(operatorID), func(o *op) (domain.Outcome, error) {
		return domain.MarkDefaulted(o.app, o.loan, u.now())
	})
	if err != nil {
		return nil, err
	}
	return &LoanView{Application: *o.app, Loan: o.loan, Transactions: []domain.Transaction{}}, nil
}
