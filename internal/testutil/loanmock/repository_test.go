package loanmock

import (
	"context"
	"errors"
	"testing"

	domain "pocketcredit-backend/internal/domain/loan"
)

func TestApplicationRepo_Create(t *testing.T) {
	ctx := context.Background()
	a := &domain.Application{ApplicationID: "APP-1"}

	// Uses provided func
	called := false
	wantErr := errors.New("boom")
	m := &ApplicationRepo{
		CreateFn: func(gotCtx context.Context, got *domain.Application) error {
			called = true
			if gotCtx != ctx {
				t.Fatalf("Create ctx mismatch")
			}
			if got != a {
				t.Fatalf("Create arg mismatch")
			}
			return wantErr
		},
	}
	if err := m.Create(ctx, a); !errors.Is(err, wantErr) {
		t.Fatalf("Create: want %v, got %v", wantErr, err)
	}
	if !called {
		t.Fatalf("CreateFn not called")
	}

	// Default (nil func) → no-op, nil error
	m = &ApplicationRepo{}
	if err := m.Create(ctx, a); err != nil {
		t.Fatalf("Create default: want nil, got %v", err)
	}
}

func TestApplicationRepo_Getters(t *testing.T) {
	ctx := context.Background()
	want := &domain.Application{ApplicationID: "APP-2"}

	m := &ApplicationRepo{
		GetByApplicationIDFn: func(_ context.Context, id string) (*domain.Application, error) {
			if id != "APP-2" {
				t.Fatalf("GetByApplicationID id mismatch: %s", id)
			}
			return want, nil
		},
		GetByApplicationIDForUpdateFn: func(_ context.Context, id string) (*domain.Application, error) {
			return want, nil
		},
	}
	if got, err := m.GetByApplicationID(ctx, "APP-2"); err != nil || got != want {
		t.Fatalf("GetByApplicationID: got %+v err=%v", got, err)
	}
	if got, err := m.GetByApplicationIDForUpdate(ctx, "APP-2"); err != nil || got != want {
		t.Fatalf("GetByApplicationIDForUpdate: got %+v err=%v", got, err)
	}

	// Defaults report not found
	m = &ApplicationRepo{}
	if _, err := m.GetByApplicationID(ctx, "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByApplicationID default: want ErrNotFound, got %v", err)
	}
	if _, err := m.GetByApplicationIDForUpdate(ctx, "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByApplicationIDForUpdate default: want ErrNotFound, got %v", err)
	}
}

func TestApplicationRepo_Lists(t *testing.T) {
	ctx := context.Background()
	m := &ApplicationRepo{
		ListByUserIDFn: func(_ context.Context, userID string) ([]domain.Application, error) {
			return []domain.Application{{UserID: userID}, {UserID: userID}}, nil
		},
		ListOpenByUserIDFn: func(_ context.Context, userID string) ([]domain.Application, error) {
			return []domain.Application{{UserID: userID, Status: domain.StatusSubmitted}}, nil
		},
	}
	if got, _ := m.ListByUserID(ctx, "u"); len(got) != 2 {
		t.Fatalf("ListByUserID len = %d", len(got))
	}
	if got, _ := m.ListOpenByUserID(ctx, "u"); len(got) != 1 || got[0].Status != domain.StatusSubmitted {
		t.Fatalf("ListOpenByUserID = %+v", got)
	}

	m = &ApplicationRepo{}
	if got, err := m.ListOpenByUserID(ctx, "u"); err != nil || got != nil {
		t.Fatalf("ListOpenByUserID default: got %+v err=%v", got, err)
	}
}

func TestApplicationRepo_Save(t *testing.T) {
	ctx := context.Background()
	saved := 0
	m := &ApplicationRepo{SaveFn: func(context.Context, *domain.Application) error { saved++; return nil }}
	_ = m.Save(ctx, &domain.Application{})
	if saved != 1 {
		t.Fatalf("SaveFn not called")
	}
	if err := (&ApplicationRepo{}).Save(ctx, &domain.Application{}); err != nil {
		t.Fatalf("Save default: %v", err)
	}
}

func TestLoanRepo(t *testing.T) {
	ctx := context.Background()
	want := &domain.Loan{LoanID: "LN-1", ApplicationID: 9}

	m := &LoanRepo{
		GetByApplicationIDFn: func(_ context.Context, appID uint64) (*domain.Loan, error) {
			if appID != 9 {
				t.Fatalf("GetByApplicationID id mismatch: %d", appID)
			}
			return want, nil
		},
		ListByUserIDFn: func(context.Context, string) ([]domain.Loan, error) { return []domain.Loan{*want}, nil },
	}
	if got, err := m.GetByApplicationID(ctx, 9); err != nil || got != want {
		t.Fatalf("GetByApplicationID: got %+v err=%v", got, err)
	}
	if got, _ := m.ListByUserID(ctx, "u"); len(got) != 1 {
		t.Fatalf("ListByUserID len = %d", len(got))
	}

	m = &LoanRepo{}
	if _, err := m.GetByApplicationID(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByApplicationID default: want ErrNotFound, got %v", err)
	}
	if err := m.Create(ctx, want); err != nil {
		t.Fatalf("Create default: %v", err)
	}
	if err := m.Save(ctx, want); err != nil {
		t.Fatalf("Save default: %v", err)
	}
}

func TestTransactionRepo(t *testing.T) {
	ctx := context.Background()

	var settled domain.TxnStatus
	m := &TransactionRepo{
		SettlePendingFn: func(_ context.Context, appID uint64, kind domain.TxnKind, status domain.TxnStatus) error {
			if appID != 3 || kind != domain.KindFee {
				t.Fatalf("SettlePending args: %d %s", appID, kind)
			}
			settled = status
			return nil
		},
		ListByUserIDFn: func(_ context.Context, _ string, limit int) ([]domain.Transaction, error) {
			return make([]domain.Transaction, limit), nil
		},
	}
	if err := m.SettlePending(ctx, 3, domain.KindFee, domain.TxnCompleted); err != nil || settled != domain.TxnCompleted {
		t.Fatalf("SettlePending: settled=%s err=%v", settled, err)
	}
	if got, _ := m.ListByUserID(ctx, "u", 5); len(got) != 5 {
		t.Fatalf("ListByUserID len = %d", len(got))
	}

	m = &TransactionRepo{}
	if err := m.Create(ctx, &domain.Transaction{}); err != nil {
		t.Fatalf("Create default: %v", err)
	}
	if got, err := m.ListByApplicationID(ctx, 1); err != nil || got != nil {
		t.Fatalf("ListByApplicationID default: got %+v err=%v", got, err)
	}
	if got, total, err := m.Search(ctx, domain.TxnFilter{UserID: "u"}); err != nil || got != nil || total != 0 {
		t.Fatalf("Search default: got %+v total=%d err=%v", got, total, err)
	}

	m = &TransactionRepo{
		SearchFn: func(_ context.Context, f domain.TxnFilter) ([]domain.Transaction, int64, error) {
			return make([]domain.Transaction, f.Limit), 42, nil
		},
	}
	if got, total, _ := m.Search(ctx, domain.TxnFilter{Limit: 3}); len(got) != 3 || total != 42 {
		t.Fatalf("Search len=%d total=%d", len(got), total)
	}
}
