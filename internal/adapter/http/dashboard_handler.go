package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pocketcredit-backend/internal/adapter/middleware"
	"pocketcredit-backend/internal/usecase/dashboard"
)

type DashboardHandler struct {
	uc  *dashboard.Usecase
	log *zap.Logger
}

func NewDashboardHandler(uc *dashboard.Usecase, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{uc: uc, log: log}
}

func (h *DashboardHandler) Summary(c echo.Context) error {
	s, err := h.uc.Summary(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, s)
}

// PaymentCalendar reads optional year and month query params; absent means current.
func (h *DashboardHandler) PaymentCalendar(c echo.Context) error {
	year, err := queryInt(c, "year")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "year must be an integer"})
	}
	month, err := queryInt(c, "month")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "month must be an integer"})
	}
	cal, err := h.uc.Calendar(c.Request().Context(), middleware.UserID(c), year, month)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, cal)
}

func (h *DashboardHandler) CreditScore(c echo.Context) error {
	dto, err := h.uc.CreditScore(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func queryInt(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
