package uowmock

import (
	"context"
	"errors"

	"pocketcredit-backend/internal/domain/applicant"
	"pocketcredit-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn     func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinUserTxFn func(ctx context.Context, userID string, fn func(r uow.Repos, a *applicant.Applicant) error) error
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinUserTx(fn func(context.Context, string, func(uow.Repos, *applicant.Applicant) error) error) *UoW {
	m.WithinUserTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Passthrough runs every body against repos and hands WithinUserTx the given applicant.
func Passthrough(repos uow.Repos, a *applicant.Applicant) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error { return fn(repos) },
		WithinUserTxFn: func(_ context.Context, _ string, fn func(uow.Repos, *applicant.Applicant) error) error {
			if a == nil {
				return applicant.ErrNotFound
			}
			return fn(repos, a)
		},
	}
}

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinUserTx(ctx context.Context, userID string, fn func(r uow.Repos, a *applicant.Applicant) error) error {
	if m.WithinUserTxFn != nil {
		return m.WithinUserTxFn(ctx, userID, fn)
	}
	return errUnimplemented
}
