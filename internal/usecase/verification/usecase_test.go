package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	mysqlrepo "pocketcredit-backend/internal/adapter/repository/mysql"
	verificationadp "pocketcredit-backend/internal/adapter/verification"
	"pocketcredit-backend/internal/domain/applicant"
	domain "pocketcredit-backend/internal/domain/verification"
	"pocketcredit-backend/pkg/id"
)

func newTestUsecase(t *testing.T, p domain.Provider, timeout time.Duration) (*Usecase, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(mysqlrepo.Models()...))
	return NewUsecase(mysqlrepo.NewGormUoW(db), p, timeout, "new_member", zap.NewNop()), db
}

func TestCredit_RecordsScore(t *testing.T) {
	uc, db := newTestUsecase(t, verificationadp.NewMockProvider(0), time.Second)
	ctx := context.Background()
	user := id.NewID32()

	p, err := uc.Credit(ctx, user, "ABCDE1234F")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.Score, 300)

	a, err := mysqlrepo.NewApplicantRepository(db).GetByUserID(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, p.Score, a.CreditScore)
	assert.NotNil(t, a.CreditCheckedAt)
}

func TestIdentityAndBank_CompleteKYC(t *testing.T) {
	uc, db := newTestUsecase(t, verificationadp.NewMockProvider(0), time.Second)
	ctx := context.Background()
	user := id.NewID32()

	// declared income before the bank check
	repo := mysqlrepo.NewApplicantRepository(db)
	require.NoError(t, repo.Create(ctx, &applicant.Applicant{UserID: user, TierName: "new_member", MonthlyIncome: decimal.NewFromInt(40000)}))

	bad, err := uc.Identity(ctx, user, "12345", "Asha Rao")
	require.NoError(t, err)
	assert.False(t, bad.Verified)

	st, err := uc.Status(ctx, user)
	require.NoError(t, err)
	assert.False(t, st.IdentityVerified)

	idRes, err := uc.Identity(ctx, user, "ABCDE1234F", "Asha Rao")
	require.NoError(t, err)
	assert.True(t, idRes.Verified)

	bank, err := uc.Bank(ctx, user, "123456789012", "HDFC0001234")
	require.NoError(t, err)
	assert.True(t, bank.Verified)

	st, err = uc.Status(ctx, user)
	require.NoError(t, err)
	assert.True(t, st.IdentityVerified)
	assert.True(t, st.BankAccountVerified)
	assert.True(t, st.IncomeVerified)
	assert.True(t, st.KYCComplete)

	a, err := repo.GetByUserID(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "ABCDE1234F", a.PAN)
	assert.Equal(t, "HDFC0001234", a.IFSC)
}

type failingProvider struct {
	domain.Provider
	err error
}

func (f failingProvider) FetchCreditProfile(context.Context, string) (domain.CreditProfile, error) {
	return domain.CreditProfile{}, f.err
}

func TestCredit_TimeoutIsUnavailable(t *testing.T) {
	uc, _ := newTestUsecase(t, verificationadp.NewMockProvider(time.Second), 10*time.Millisecond)
	_, err := uc.Credit(context.Background(), id.NewID32(), "ABCDE1234F")
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	boom := errors.New("bureau rejected request")
	uc, _ = newTestUsecase(t, failingProvider{err: boom}, time.Second)
	_, err = uc.Credit(context.Background(), id.NewID32(), "ABCDE1234F")
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, domain.ErrUnavailable))
}
