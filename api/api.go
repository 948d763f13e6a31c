// Package api exposes the site-lock gate over HTTP: password
// verification, session checks, and the admin rotation endpoints.
package api

import (
	_ "embed"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jalvarado/sitegate/session"
	"github.com/jalvarado/sitegate/settings"
)

// API holds the dependencies needed by the gate handlers.
type API struct {
	codec     *session.Codec
	validator *session.Validator
	store     settings.Store
	rotator   *settings.Rotator
	limiter   AttemptLimiter
	audit     *auditLogger
	admins    map[string]struct{}
	now       func() time.Time
}

//go:embed openapi.yaml
var openapiSpec []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for audit events.
// If not set, a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.audit = newAuditLogger(logger)
	}
}

// WithAttemptLimiter replaces the in-process fixed-window limiter, e.g.
// with a distributed implementation.
func WithAttemptLimiter(l AttemptLimiter) Option {
	return func(a *API) {
		a.limiter = l
	}
}

// WithAdminIDs sets the allow-list of administrator identities.
func WithAdminIDs(ids []string) Option {
	return func(a *API) {
		a.admins = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			a.admins[id] = struct{}{}
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *API) {
		a.now = now
	}
}

// New creates a new API instance.
func New(codec *session.Codec, validator *session.Validator, store settings.Store, opts ...Option) *API {
	a := &API{
		codec:     codec,
		validator: validator,
		store:     store,
		admins:    make(map[string]struct{}),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.audit == nil {
		a.audit = newAuditLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}
	if a.limiter == nil {
		a.limiter = NewFixedWindowLimiter(DefaultWindow, DefaultLimit)
	}
	a.rotator = settings.NewRotator(store, settings.WithRotatorLogger(a.audit.logger))
	return a
}

// Router returns a chi.Router with all gate routes mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/redoc",
	}, nil))

	r.Post("/auth/verify", a.Verify)
	r.Get("/auth/check", a.Check)
	r.Post("/auth/logout", a.Logout)

	r.Route("/admin/settings", func(r chi.Router) {
		r.Use(a.RequireAdmin)
		r.Get("/", a.GetSettings)
		r.Post("/", a.UpdateSettings)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
