// Package middleware provides HTTP middleware for the InboxPilot API.
package middleware

import (
	"crypto/subtle"
	"log/slog"
	"os"
	"strings"

	"github.com/inboxpilot/inboxpilot-backend/internal/logger"
	"github.com/labstack/echo/v4"
)

// APIKeyAuth validates API key from Authorization header.
// Uses constant-time comparison to prevent timing attacks.
func APIKeyAuth(log *slog.Logger) echo.MiddlewareFunc {
	validAPIKey := os.Getenv("API_KEY")

	var seclog *logger.SecurityLogger
	if log != nil {
		seclog = logger.NewSecurityLoggerWithHandler(log.Handler())
		if validAPIKey == "" {
			log.Warn("API_KEY not set - API is UNSECURED")
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()

			// Skip auth for health endpoints
			if strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/ready") {
				return next(c)
			}

			// Skip if API_KEY not configured (development mode)
			if validAPIKey == "" {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				if seclog != nil {
					seclog.AuthFailure(c.RealIP(), path, "missing_authorization_header")
				}
				return echo.NewHTTPError(401, map[string]string{
					"error": "missing authorization header",
					"code":  "UNAUTHORIZED",
				})
			}

			// Extract token from "Bearer <token>" format
			token := strings.TrimPrefix(authHeader, "Bearer ")
			token = strings.TrimSpace(token)

			// Use constant-time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(token), []byte(validAPIKey)) != 1 {
				if seclog != nil {
					seclog.AuthFailure(c.RealIP(), path, "invalid_api_key")
				}
				return echo.NewHTTPError(401, map[string]string{
					"error": "invalid API key",
					"code":  "UNAUTHORIZED",
				})
			}

			return next(c)
		}
	}
}
