package mysql

import (
	"context"

	loanDomain "pocketcredit-backend/internal/domain/loan"

	"gorm.io/gorm"
)

type ApplicationRepository struct{ db *gorm.DB }

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *loanDomain.Application) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApplicationRepository) Save(ctx context.Context, a *loanDomain.Application) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *ApplicationRepository) GetByApplicationID(ctx context.Context, applicationID string) (*loanDomain.Application, error) {
	var out loanDomain.Application
	res := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, loanDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ApplicationRepository) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*loanDomain.Application, error) {
	var out loanDomain.Application
	res := forUpdate(r.db.WithContext(ctx)).Where("application_id = ?", applicationID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, loanDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ApplicationRepository) ListByUserID(ctx context.Context, userID string) ([]loanDomain.Application, error) {
	var out []loanDomain.Application
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("applied_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *ApplicationRepository) ListOpenByUserID(ctx context.Context, userID string) ([]loanDomain.Application, error) {
	var out []loanDomain.Application
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, loanDomain.OpenStatuses).
		Order("applied_at DESC, id DESC").
		Find(&out).Error
	return out, err
}
