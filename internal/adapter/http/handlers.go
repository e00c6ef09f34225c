package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct{ startedAt time.Time }

func NewHandler() *Handler { return &Handler{startedAt: time.Now()} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":         "ok",
		"service":        "pocketcredit-backend",
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"time":           time.Now().UTC().Format(time.RFC3339Nano),
	})
}
