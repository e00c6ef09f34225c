package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pocketcredit-backend/internal/adapter/middleware"
	"pocketcredit-backend/internal/usecase/verification"
)

type VerificationHandler struct {
	uc  *verification.Usecase
	log *zap.Logger
}

func NewVerificationHandler(uc *verification.Usecase, log *zap.Logger) *VerificationHandler {
	return &VerificationHandler{uc: uc, log: log}
}

type creditReq struct {
	PAN string `json:"pan" validate:"required,pan"`
}

type identityReq struct {
	PAN      string `json:"pan"       validate:"required,pan"`
	FullName string `json:"full_name" validate:"required,max=128"`
}

type bankReq struct {
	AccountNumber string `json:"account_number" validate:"required,acctno"`
	IFSC          string `json:"ifsc"           validate:"required,ifsc"`
}

func (h *VerificationHandler) Credit(c echo.Context) error {
	var req creditReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	p, err := h.uc.Credit(c.Request().Context(), middleware.UserID(c), strings.ToUpper(req.PAN))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *VerificationHandler) Identity(c echo.Context) error {
	var req identityReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	res, err := h.uc.Identity(c.Request().Context(), middleware.UserID(c), strings.ToUpper(req.PAN), req.FullName)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *VerificationHandler) Bank(c echo.Context) error {
	var req bankReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	res, err := h.uc.Bank(c.Request().Context(), middleware.UserID(c), req.AccountNumber, strings.ToUpper(req.IFSC))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *VerificationHandler) Status(c echo.Context) error {
	dto, err := h.uc.Status(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
