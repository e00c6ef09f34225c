package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pocketcredit-backend/internal/adapter/middleware"
	"pocketcredit-backend/internal/domain/amortization"
	domain "pocketcredit-backend/internal/domain/loan"
	"pocketcredit-backend/internal/usecase/loan"
)

type LoanHandler struct {
	uc  *loan.Usecase
	log *zap.Logger
}

func NewLoanHandler(uc *loan.Usecase, log *zap.Logger) *LoanHandler {
	return &LoanHandler{uc: uc, log: log}
}

type eligibilityReq struct {
	Amount     string `json:"amount"      validate:"required,money"`
	Tenure     int    `json:"tenure"      validate:"required,gte=1,lte=3650"`
	TenureUnit string `json:"tenure_unit" validate:"omitempty,oneof=month day"`
}

type submitReq struct {
	Amount     string `json:"amount"      validate:"required,money"`
	Tenure     int    `json:"tenure"      validate:"required,gte=1,lte=3650"`
	TenureUnit string `json:"tenure_unit" validate:"omitempty,oneof=month day"`
	Purpose    string `json:"purpose"     validate:"max=255"`
}

type paymentReq struct {
	Amount string `json:"amount" validate:"required,money"`
}

type transactionsReq struct {
	Kind   string `query:"kind"   json:"kind"   validate:"omitempty,oneof=fee repayment disbursal"`
	Status string `query:"status" json:"status" validate:"omitempty,oneof=pending completed failed"`
	Page   int    `query:"page"   json:"page"   validate:"omitempty,gte=1"`
	Limit  int    `query:"limit"  json:"limit"  validate:"omitempty,gte=1,lte=100"`
}

type cancelReq struct {
	Reason string `json:"reason" validate:"required,max=255"`
}

// loanID reads and checks the :loan_id path param.
func loanID(c echo.Context) (string, bool) {
	id := c.Param("loan_id")
	return id, reHex32.MatchString(id)
}

func badLoanID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "loan_id must be 32-char lowercase hex"})
}

func (h *LoanHandler) Eligibility(c echo.Context) error {
	var req eligibilityReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Eligibility(c.Request().Context(), middleware.UserID(c), loan.EligibilityInput{
		Amount: decimal.RequireFromString(req.Amount),
		Tenure: req.Tenure,
		Unit:   amortization.TenureUnit(req.TenureUnit),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Submit(c echo.Context) error {
	var req submitReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	app, err := h.uc.Submit(c.Request().Context(), middleware.UserID(c), loan.SubmitInput{
		Amount:  decimal.RequireFromString(req.Amount),
		Tenure:  req.Tenure,
		Unit:    amortization.TenureUnit(req.TenureUnit),
		Purpose: req.Purpose,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, app)
}

func (h *LoanHandler) List(c echo.Context) error {
	apps, err := h.uc.List(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loans": apps})
}

func (h *LoanHandler) Get(c echo.Context) error {
	id, ok := loanID(c)
	if !ok {
		return badLoanID(c)
	}
	view, err := h.uc.Get(c.Request().Context(), middleware.UserID(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *LoanHandler) Timeline(c echo.Context) error {
	id, ok := loanID(c)
	if !ok {
		return badLoanID(c)
	}
	dto, err := h.uc.Timeline(c.Request().Context(), middleware.UserID(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Schedule(c echo.Context) error {
	id, ok := loanID(c)
	if !ok {
		return badLoanID(c)
	}
	dto, err := h.uc.Schedule(c.Request().Context(), middleware.UserID(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) PreclosureQuote(c echo.Context) error {
	id, ok := loanID(c)
	if !ok {
		return badLoanID(c)
	}
	dto, err := h.uc.QuotePreclosure(c.Request().Context(), middleware.UserID(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Preclose(c echo.Context) error {
	id, ok := loanID(c)
	if !ok {
		return badLoanID(c)
	}
	dto, err := h.uc.Preclose(c.Request().Context(), middleware.UserID(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Pay(c echo.Context) error {
	id, ok := loanID(c)
	if !ok {
		return badLoanID(c)
	}
	var req paymentReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Pay(c.Request().Context(), middleware.UserID(c), id, decimal.RequireFromString(req.Amount))
	if err != nil {
		return writeError(c, h.log, err)
	}
	// a short payment is recorded as a failed transaction, not an error
	code := http.StatusOK
	if !dto.Result.Applied {
		code = http.StatusUnprocessableEntity
	}
	return c.JSON(code, dto)
}

func (h *LoanHandler) Cancel(c echo.Context) error {
	id, ok := loanID(c)
	if !ok {
		return badLoanID(c)
	}
	var req cancelReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	app, err := h.uc.Cancel(c.Request().Context(), middleware.UserID(c), id, req.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, app)
}

func (h *LoanHandler) Offers(c echo.Context) error {
	dto, err := h.uc.Offers(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Transactions reads optional kind, status, page and limit query params.
func (h *LoanHandler) Transactions(c echo.Context) error {
	var req transactionsReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	page, err := h.uc.Transactions(c.Request().Context(), middleware.UserID(c), loan.TransactionQuery{
		Kind:   domain.TxnKind(req.Kind),
		Status: domain.TxnStatus(req.Status),
		Page:   req.Page,
		Limit:  req.Limit,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, page)
}
