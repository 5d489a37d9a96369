// Package logger provides audit logging for the guildlog backend.
package logger

import (
	"log/slog"
	"os"
	"time"
)

// AuditLogger logs security and data-lifecycle events. Message content is
// never included in audit records.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new AuditLogger with JSON output.
func NewAuditLogger() *AuditLogger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return &AuditLogger{
		logger: slog.New(handler),
	}
}

// NewAuditLoggerWithHandler creates an AuditLogger with a custom handler.
func NewAuditLoggerWithHandler(handler slog.Handler) *AuditLogger {
	return &AuditLogger{
		logger: slog.New(handler),
	}
}

// AuthFailure logs a failed authentication attempt.
// Never logs the actual credentials.
func (a *AuditLogger) AuthFailure(ip, path, reason string) {
	a.logger.Warn("authentication_failure",
		slog.String("event_type", "auth_failure"),
		slog.String("ip", ip),
		slog.String("path", path),
		slog.String("reason", reason),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

// RateLimitExceeded logs when a client exceeds rate limits.
func (a *AuditLogger) RateLimitExceeded(ip, path string) {
	a.logger.Warn("rate_limit_exceeded",
		slog.String("event_type", "rate_limit"),
		slog.String("ip", ip),
		slog.String("path", path),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

// ConsentChanged logs a consent grant or revocation.
func (a *AuditLogger) ConsentChanged(guildID, userID int64, level int, active bool) {
	a.logger.Info("consent_changed",
		slog.String("event_type", "consent"),
		slog.Int64("guild_id", guildID),
		slog.Int64("user_id", userID),
		slog.Int("level", level),
		slog.Bool("active", active),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

// UserDataErased logs a consent-driven erasure run.
func (a *AuditLogger) UserDataErased(guildID, userID, messages, files int64) {
	a.logger.Info("user_data_erased",
		slog.String("event_type", "erasure"),
		slog.Int64("guild_id", guildID),
		slog.Int64("user_id", userID),
		slog.Int64("messages_deleted", messages),
		slog.Int64("files_deleted", files),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

// AdminSeeded logs creation of the bootstrap admin account.
func (a *AuditLogger) AdminSeeded(username string) {
	a.logger.Info("admin_seeded",
		slog.String("event_type", "admin_bootstrap"),
		slog.String("username", username),
		slog.Time("timestamp", time.Now().UTC()),
	)
}
