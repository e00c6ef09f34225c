package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pocketcredit-backend/internal/adapter/middleware"
	"pocketcredit-backend/internal/usecase/applicant"
)

type ProfileHandler struct {
	uc  *applicant.Usecase
	log *zap.Logger
}

func NewProfileHandler(uc *applicant.Usecase, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{uc: uc, log: log}
}

// Omitted fields are left unchanged.
type updateProfileReq struct {
	MonthlyIncome *string `json:"monthly_income" validate:"omitempty,money0"`
	EmailVerified *bool   `json:"email_verified"`
	PhoneVerified *bool   `json:"phone_verified"`
}

type submitDocumentReq struct {
	Name string `json:"name" validate:"required,max=64"`
}

func (h *ProfileHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ProfileHandler) Update(c echo.Context) error {
	var req updateProfileReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	in := applicant.ProfileInput{EmailVerified: req.EmailVerified, PhoneVerified: req.PhoneVerified}
	if req.MonthlyIncome != nil {
		income := decimal.RequireFromString(*req.MonthlyIncome)
		in.MonthlyIncome = &income
	}
	dto, err := h.uc.UpdateProfile(c.Request().Context(), middleware.UserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ProfileHandler) SubmitDocument(c echo.Context) error {
	var req submitDocumentReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	doc, err := h.uc.SubmitDocument(c.Request().Context(), middleware.UserID(c), applicant.DocumentInput{Name: req.Name})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

func (h *ProfileHandler) ListDocuments(c echo.Context) error {
	docs, err := h.uc.ListDocuments(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"documents": docs})
}
