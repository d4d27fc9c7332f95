package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/inboxpilot/inboxpilot-backend/internal/validator"
	"github.com/labstack/echo/v4"
)

// UserIDContextKey is the echo context key holding the resolved user ID.
const UserIDContextKey = "user_id"

// HeaderUserID carries the authenticated user identity, set by the fronting
// auth layer that terminates the session.
const HeaderUserID = "X-User-ID"

// ResolveUser extracts the authenticated user from the request and stores
// it on the context. Requests without an identity are rejected before they
// reach a handler.
func ResolveUser(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
			if err := validator.ValidateUserID(userID); err != nil {
				if logger != nil {
					logger.Warn("request without valid user identity",
						slog.String("ip", c.RealIP()),
						slog.String("path", c.Path()),
						slog.Any("error", err))
				}
				return echo.NewHTTPError(http.StatusUnauthorized, map[string]string{
					"error": "user not authenticated",
					"code":  "UNAUTHENTICATED",
				})
			}

			c.Set(UserIDContextKey, userID)
			return next(c)
		}
	}
}

// UserID returns the resolved user ID from the context, or "" when the
// resolve middleware did not run.
func UserID(c echo.Context) string {
	if id, ok := c.Get(UserIDContextKey).(string); ok {
		return id
	}
	return ""
}
