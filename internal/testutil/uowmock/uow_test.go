package uowmock

import (
	"context"
	"errors"
	"testing"

	"pocketcredit-backend/internal/domain/applicant"
	"pocketcredit-backend/internal/domain/uow"
	"pocketcredit-backend/internal/testutil/historymock"
	"pocketcredit-backend/internal/testutil/loanmock"
)

func TestUoW_WithinTx_Happy(t *testing.T) {
	ctx := context.Background()

	apps := &loanmock.ApplicationRepo{}
	events := &historymock.Repo{}
	repos := uow.Repos{Applications: apps, History: events}

	innerCalled := false
	m := &UoW{
		WithinTxFn: func(gotCtx context.Context, fn func(r uow.Repos) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinTx: ctx mismatch")
			}
			if fn == nil {
				t.Fatalf("WithinTx: fn is nil")
			}
			// simulate transaction body
			return fn(repos)
		},
	}

	err := m.WithinTx(ctx, func(r uow.Repos) error {
		innerCalled = true
		if r.Applications != apps || r.History != events {
			t.Fatalf("WithinTx: repos not forwarded correctly")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTx: unexpected err: %v", err)
	}
	if !innerCalled {
		t.Fatalf("WithinTx: inner fn not called")
	}
}

func TestUoW_WithinTx_PropagatesError(t *testing.T) {
	ctx := context.Background()
	sentinel := errors.New("boom")

	m := &UoW{
		WithinTxFn: func(context.Context, func(uow.Repos) error) error {
			return sentinel
		},
	}
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, sentinel) {
		t.Fatalf("WithinTx: want %v, got %v", sentinel, err)
	}
}

func TestUoW_Default_Unimplemented(t *testing.T) {
	ctx := context.Background()
	m := &UoW{} // no funcs set
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: want errUnimplemented, got %v", err)
	}
	err := m.WithinUserTx(ctx, "u", func(uow.Repos, *applicant.Applicant) error { return nil })
	if !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinUserTx default: want errUnimplemented, got %v", err)
	}
}

func TestUoW_WithinUserTx_Happy(t *testing.T) {
	ctx := context.Background()

	loans := &loanmock.LoanRepo{}
	repos := uow.Repos{Loans: loans}
	locked := &applicant.Applicant{ID: 7, UserID: "user-7"}

	innerCalled := false
	m := &UoW{
		WithinUserTxFn: func(gotCtx context.Context, userID string, fn func(r uow.Repos, a *applicant.Applicant) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinUserTx: ctx mismatch")
			}
			if userID != "user-7" {
				t.Fatalf("WithinUserTx: userID mismatch, got %s", userID)
			}
			return fn(repos, locked)
		},
	}

	err := m.WithinUserTx(ctx, "user-7", func(r uow.Repos, a *applicant.Applicant) error {
		innerCalled = true
		if r.Loans != loans {
			t.Fatalf("WithinUserTx: repos not forwarded")
		}
		if a != locked {
			t.Fatalf("WithinUserTx: applicant not forwarded correctly: %+v", a)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinUserTx: unexpected err: %v", err)
	}
	if !innerCalled {
		t.Fatalf("WithinUserTx: inner fn not called")
	}
}

func TestPassthrough(t *testing.T) {
	ctx := context.Background()
	repos := uow.Repos{Loans: &loanmock.LoanRepo{}}

	m := Passthrough(repos, &applicant.Applicant{UserID: "u1"})
	if err := m.WithinUserTx(ctx, "u1", func(_ uow.Repos, a *applicant.Applicant) error {
		if a.UserID != "u1" {
			t.Fatalf("applicant = %+v", a)
		}
		return nil
	}); err != nil {
		t.Fatalf("WithinUserTx: %v", err)
	}

	m = Passthrough(repos, nil)
	err := m.WithinUserTx(ctx, "u1", func(uow.Repos, *applicant.Applicant) error {
		t.Fatalf("body must not run without an applicant")
		return nil
	})
	if !errors.Is(err, applicant.ErrNotFound) {
		t.Fatalf("want applicant.ErrNotFound, got %v", err)
	}
}

func TestUoW_FluentSetters_And_Reset(t *testing.T) {
	m := New()
	if m.WithinTxFn != nil || m.WithinUserTxFn != nil {
		t.Fatalf("New should start with nil funcs")
	}

	// set via fluent setters
	m.WithWithinTx(func(context.Context, func(uow.Repos) error) error { return nil }).
		WithWithinUserTx(func(context.Context, string, func(uow.Repos, *applicant.Applicant) error) error { return nil })

	if m.WithinTxFn == nil || m.WithinUserTxFn == nil {
		t.Fatalf("fluent setters didn't assign funcs")
	}

	// reset clears funcs
	m.Reset()
	if m.WithinTxFn != nil || m.WithinUserTxFn != nil {
		t.Fatalf("Reset should clear function fields")
	}
}
