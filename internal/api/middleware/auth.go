package middleware

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/guildlog/guildlog-backend/internal/logger"
	"github.com/guildlog/guildlog-backend/internal/repository"
)

// APIKeyAuth validates the API key from the Authorization header.
// Uses constant-time comparison to prevent timing attacks.
func APIKeyAuth(apiKey string, audit *logger.AuditLogger, log *slog.Logger) echo.MiddlewareFunc {
	if apiKey == "" && log != nil {
		log.Warn("API_KEY not set - API is UNSECURED")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()

			// Skip if API_KEY not configured (development mode)
			if apiKey == "" {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				if audit != nil {
					audit.AuthFailure(c.RealIP(), path, "missing authorization header")
				}
				return echo.NewHTTPError(401, map[string]string{
					"error": "missing authorization header",
					"code":  "UNAUTHORIZED",
				})
			}

			// Extract token from "Bearer <token>" format
			token := strings.TrimPrefix(authHeader, "Bearer ")
			token = strings.TrimSpace(token)

			if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
				if audit != nil {
					audit.AuthFailure(c.RealIP(), path, "invalid API key")
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

// BasicAuth protects the HTML message view with credentials checked
// against the seeded admin accounts.
func BasicAuth(admins repository.AdminRepository, audit *logger.AuditLogger) echo.MiddlewareFunc {
	return echomw.BasicAuth(func(username, password string, c echo.Context) (bool, error) {
		admin, err := admins.GetByUsername(c.Request().Context(), username)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				if audit != nil {
					audit.AuthFailure(c.RealIP(), c.Path(), "unknown admin user")
				}
				return false, nil
			}
			return false, err
		}

		if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
			if audit != nil {
				audit.AuthFailure(c.RealIP(), c.Path(), "wrong admin password")
			}
			return false, nil
		}
		return true, nil
	})
}
