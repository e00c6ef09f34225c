package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pocketcredit-backend/internal/domain/amortization"
	"pocketcredit-backend/internal/domain/applicant"
	loanDomain "pocketcredit-backend/internal/domain/loan"
	"pocketcredit-backend/internal/domain/verification"
	applicantuc "pocketcredit-backend/internal/usecase/applicant"
	"pocketcredit-backend/internal/usecase/dashboard"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, loanDomain.ErrNotFound), errors.Is(err, applicant.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, loanDomain.ErrInvalidTransition),
		errors.Is(err, loanDomain.ErrConcurrentApplication),
		errors.Is(err, loanDomain.ErrNotActive),
		errors.Is(err, loanDomain.ErrGracePeriodPending),
		errors.Is(err, loanDomain.ErrNotOverdue),
		errors.Is(err, loanDomain.ErrPreclosureNotEligible):
		return http.StatusConflict
	case errors.Is(err, loanDomain.ErrEligibilityBlocked),
		errors.Is(err, loanDomain.ErrBankAccountUnverified),
		errors.Is(err, loanDomain.ErrInvalidDisbursalDate),
		errors.Is(err, loanDomain.ErrReasonRequired),
		errors.Is(err, loanDomain.ErrInvalidAmount),
		errors.Is(err, amortization.ErrInvalidTerms),
		errors.Is(err, applicantuc.ErrUnknownTier),
		errors.Is(err, applicantuc.ErrInvalidDocumentStatus),
		errors.Is(err, applicantuc.ErrInvalidIncome),
		errors.Is(err, applicantuc.ErrDocumentNameRequired),
		errors.Is(err, dashboard.ErrInvalidMonth):
		return http.StatusUnprocessableEntity
	case errors.Is(err, verification.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError maps a use-case error onto the error envelope. Unexpected errors are
// logged and reported without detail.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("route", c.Path()),
			zap.Error(err))
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	resp := ErrorResponse{Error: err.Error()}
	var blocked *loanDomain.EligibilityBlockedError
	if errors.As(err, &blocked) {
		resp.Error = loanDomain.ErrEligibilityBlocked.Error()
		resp.Reasons = blocked.Reasons
		resp.Warnings = blocked.Warnings
	}
	return c.JSON(code, resp)
}

// bindValid binds and validates the body, writing the 400/422 response itself.
// It reports whether the handler should continue.
func bindValid(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
