package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// AuditEvent identifies the type of security-relevant action being logged.
type AuditEvent string

const (
	AuditVerifySuccess     AuditEvent = "verify_success"
	AuditVerifyFailure     AuditEvent = "verify_failure"
	AuditVerifyRateLimited AuditEvent = "verify_rate_limited"
	AuditLogout            AuditEvent = "logout"
	AuditPasswordChanged   AuditEvent = "password_changed"
	AuditLogoutAll         AuditEvent = "logout_all"
	AuditAdminDenied       AuditEvent = "admin_denied"
)

// auditLogger wraps slog.Logger for structured security audit logging.
type auditLogger struct {
	logger *slog.Logger
}

func newAuditLogger(logger *slog.Logger) *auditLogger {
	return &auditLogger{
		logger: logger.With("component", "audit"),
	}
}

// log writes a structured audit log entry. Every entry carries a unique
// event ID so entries can be referenced individually downstream.
func (al *auditLogger) log(event AuditEvent, r *http.Request, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("event", string(event)),
		slog.String("event_id", uuid.NewString()),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	baseAttrs = append(baseAttrs, attrs...)

	al.logger.LogAttrs(r.Context(), slog.LevelInfo, "audit", baseAttrs...)
	recordAuditEvent(event)
}

// logFailure logs a failed or denied attempt with its reason. The reason
// is a coarse category, never the submitted password.
func (al *auditLogger) logFailure(event AuditEvent, r *http.Request, reason string, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("reason", reason),
	}
	attrs = append(attrs, extra...)
	al.log(event, r, attrs...)
}
