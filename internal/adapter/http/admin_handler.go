package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pocketcredit-backend/internal/adapter/middleware"
	"pocketcredit-backend/internal/usecase/applicant"
	"pocketcredit-backend/internal/usecase/loan"
)

// AdminHandler serves the back-office routes: loan decisions and payout, document
// review and tier assignment.
type AdminHandler struct {
	loans      *loan.Usecase
	applicants *applicant.Usecase
	log        *zap.Logger
}

func NewAdminHandler(loans *loan.Usecase, applicants *applicant.Usecase, log *zap.Logger) *AdminHandler {
	return &AdminHandler{loans: loans, applicants: applicants, log: log}
}

type rejectReq struct {
	Reason string `json:"reason" validate:"required,max=255"`
}

type disburseReq struct {
	// Accept canonical date `YYYY-MM-DD`
	DisbursalDate string `json:"disbursal_date" validate:"required,datetime=2006-01-02"`
}

type reviewDocumentReq struct {
	Status  string `json:"status"  validate:"required,oneof=verified rejected"`
	Remarks string `json:"remarks" validate:"max=255"`
}

type setTierReq struct {
	Tier string `json:"tier" validate:"required,max=32"`
}

func (h *AdminHandler) StartReview(c echo.Context) error {
	id, ok := loanID(c)
	if !ok {
		return badLoanID(c)
	}
	app, err := h.loans.StartReview(c.Request().Context(), middleware.UserID(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, app)
}

func (h *AdminHandler) Approve(c echo.Context) error {
	id, ok := loanID(c)
	if !ok {
		return badLoanID(c)
	}
	view, err := h.loans.Approve(c.Request().Context(), middleware.UserID(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *AdminHandler) Reject(c echo.Context) error {
	id, ok := loanID(c)
	if !ok {
		return badLoanID(c)
	}
	var req rejectReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	app, err := h.loans.Reject(c.Request().Context(), middleware.UserID(c), id, req.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, app)
}

func (h *AdminHandler) Disburse(c echo.Context) error {
	id, ok := loanID(c)
	if !ok {
		return badLoanID(c)
	}
	var req disburseReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	// validated above
	date, _ := time.Parse(time.DateOnly, req.DisbursalDate)
	view, err := h.loans.Disburse(c.Request().Context(), middleware.UserID(c), id, date)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *AdminHandler) Activate(c echo.Context) error {
	id, ok := loanID(c)
	if !ok {
		return badLoanID(c)
	}
	view, err := h.loans.Activate(c.Request().Context(), middleware.UserID(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *AdminHandler) MarkDefaulted(c echo.Context) error {
	id, ok := loanID(c)
	if !ok {
		return badLoanID(c)
	}
	view, err := h.loans.MarkDefaulted(c.Request().Context(), middleware.UserID(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *AdminHandler) ReviewDocument(c echo.Context) error {
	docID := c.Param("document_id")
	if !reHex32.MatchString(docID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "document_id must be 32-char lowercase hex"})
	}
	var req reviewDocumentReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	doc, err := h.applicants.ReviewDocument(c.Request().Context(), docID, applicant.ReviewInput{
		Status:  req.Status,
		Remarks: req.Remarks,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, doc)
}

func (h *AdminHandler) SetTier(c echo.Context) error {
	userID := c.Param("user_id")
	if !reHex32.MatchString(userID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user_id must be 32-char lowercase hex"})
	}
	var req setTierReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.applicants.SetTier(c.Request().Context(), userID, req.Tier)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
