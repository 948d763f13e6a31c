package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jalvarado/sitegate/session"
)

var (
	verifyAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sitegate",
		Subsystem: "auth",
		Name:      "verify_attempts_total",
		Help:      "Password verification attempts by result.",
	}, []string{"result"})

	sessionChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sitegate",
		Subsystem: "auth",
		Name:      "session_checks_total",
		Help:      "Session cookie validations by terminal state.",
	}, []string{"state"})

	settingsUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sitegate",
		Subsystem: "admin",
		Name:      "settings_updates_total",
		Help:      "Admin settings updates by action.",
	}, []string{"action"})

	auditEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sitegate",
		Subsystem: "audit",
		Name:      "events_total",
		Help:      "Audit events emitted, by event type.",
	}, []string{"event"})
)

func recordVerify(result string) {
	verifyAttempts.WithLabelValues(result).Inc()
}

func recordCheck(state session.State) {
	sessionChecks.WithLabelValues(state.String()).Inc()
}

func recordSettingsUpdate(action string) {
	settingsUpdates.WithLabelValues(action).Inc()
}

func recordAuditEvent(event AuditEvent) {
	auditEvents.WithLabelValues(string(event)).Inc()
}
