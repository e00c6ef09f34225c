package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const userIDKey = "user_id"

// RequireUser admits requests carrying a valid X-User-Id, set by the gateway after
// authentication, and exposes it through UserID.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
			if userID == "" {
				return errJSON(c, http.StatusUnauthorized, "missing "+HeaderUserID)
			}
			if !reHex32.MatchString(userID) {
				return errJSON(c, http.StatusBadRequest, "invalid "+HeaderUserID)
			}
			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// UserID returns the caller set by RequireUser, or "".
func UserID(c echo.Context) string {
	s, _ := c.Get(userIDKey).(string)
	return s
}
