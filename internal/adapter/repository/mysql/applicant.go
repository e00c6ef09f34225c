package mysql

import (
	"context"

	applicantDomain "pocketcredit-backend/internal/domain/applicant"

	"gorm.io/gorm"
)

type ApplicantRepository struct{ db *gorm.DB }

func NewApplicantRepository(db *gorm.DB) *ApplicantRepository { return &ApplicantRepository{db: db} }

func (r *ApplicantRepository) Create(ctx context.Context, a *applicantDomain.Applicant) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApplicantRepository) Save(ctx context.Context, a *applicantDomain.Applicant) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *ApplicantRepository) GetByUserID(ctx context.Context, userID string) (*applicantDomain.Applicant, error) {
	var out applicantDomain.Applicant
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, applicantDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ApplicantRepository) GetByUserIDForUpdate(ctx context.Context, userID string) (*applicantDomain.Applicant, error) {
	var out applicantDomain.Applicant
	res := forUpdate(r.db.WithContext(ctx)).Where("user_id = ?", userID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, applicantDomain.ErrNotFound)
	}
	return &out, nil
}

type DocumentRepository struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) *DocumentRepository { return &DocumentRepository{db: db} }

func (r *DocumentRepository) Create(ctx context.Context, d *applicantDomain.Document) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DocumentRepository) Save(ctx context.Context, d *applicantDomain.Document) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *DocumentRepository) GetByDocumentID(ctx context.Context, documentID string) (*applicantDomain.Document, error) {
	var out applicantDomain.Document
	res := r.db.WithContext(ctx).Where("document_id = ?", documentID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, applicantDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *DocumentRepository) ListByUserID(ctx context.Context, userID string) ([]applicantDomain.Document, error) {
	var out []applicantDomain.Document
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}
