package mysql

import (
	"context"

	loanDomain "pocketcredit-backend/internal/domain/loan"

	"gorm.io/gorm"
)

type TransactionRepository struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *loanDomain.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransactionRepository) ListByApplicationID(ctx context.Context, applicationID uint64) ([]loanDomain.Transaction, error) {
	var out []loanDomain.Transaction
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *TransactionRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]loanDomain.Transaction, error) {
	var out []loanDomain.Transaction
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}

func (r *TransactionRepository) Search(ctx context.Context, f loanDomain.TxnFilter) ([]loanDomain.Transaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&loanDomain.Transaction{}).Where("user_id = ?", f.UserID)
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []loanDomain.Transaction
	q = q.Order("created_at DESC, id DESC").Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	return out, total, q.Find(&out).Error
}

func (r *TransactionRepository) SettlePending(ctx context.Context, applicationID uint64, kind loanDomain.TxnKind, status loanDomain.TxnStatus) error {
	return r.db.WithContext(ctx).
		Model(&loanDomain.Transaction{}).
		Where("application_id = ? AND kind = ? AND status = ?", applicationID, kind, loanDomain.TxnPending).
		Update("status", status).Error
}
