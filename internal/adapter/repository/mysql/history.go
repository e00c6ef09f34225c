package mysql

import (
	"context"

	historyDomain "pocketcredit-backend/internal/domain/history"

	"gorm.io/gorm"
)

type HistoryRepository struct{ db *gorm.DB }

func NewHistoryRepository(db *gorm.DB) *HistoryRepository { return &HistoryRepository{db: db} }

func (r *HistoryRepository) Create(ctx context.Context, e *historyDomain.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *HistoryRepository) ListByApplicationID(ctx context.Context, applicationID uint64) ([]historyDomain.Event, error) {
	var out []historyDomain.Event
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("occurred_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
