package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jalvarado/sitegate/internal/util"
)

// MinPasswordLen is the minimum accepted site password length.
const MinPasswordLen = 4

// ErrPasswordTooShort is returned when a rotation submits a password
// shorter than MinPasswordLen.
var ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLen)

// Rotator performs the privileged settings mutations: rotating the site
// password and force-logging-out all sessions. Both work by bumping the
// password version, which is the sole revocation mechanism — there is
// no per-session revocation list.
type Rotator struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// RotatorOption configures a Rotator.
type RotatorOption func(*Rotator)

// WithRotatorLogger sets the structured logger for rotation events.
func WithRotatorLogger(logger *slog.Logger) RotatorOption {
	return func(r *Rotator) {
		r.logger = logger
	}
}

// WithRotatorClock overrides the time source, for tests.
func WithRotatorClock(now func() time.Time) RotatorOption {
	return func(r *Rotator) {
		r.now = now
	}
}

// NewRotator creates a Rotator backed by the given store.
func NewRotator(store Store, opts ...RotatorOption) *Rotator {
	r := &Rotator{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// ChangePassword replaces the site password and bumps the version,
// invalidating every previously issued session on its next validation.
// Returns the new version. The private view is written first, then the
// public view — best effort, not transactional across the two.
func (r *Rotator) ChangePassword(ctx context.Context, newPassword, adminID string) (int, error) {
	if len(newPassword) < MinPasswordLen {
		return 0, ErrPasswordTooShort
	}

	current, err := r.currentPrivate(ctx)
	if err != nil {
		return 0, err
	}

	newVersion := current.Version() + 1
	rec := Private{
		SitePassword:        util.Normalize(newPassword),
		SitePasswordVersion: newVersion,
		LastPasswordChange:  r.now().UTC(),
		LastLogoutAll:       current.LastLogoutAll,
	}
	if err := r.writeBoth(ctx, rec); err != nil {
		return 0, err
	}

	r.logger.InfoContext(ctx, "site password changed",
		slog.String("admin_id", adminID),
		slog.Int("new_version", newVersion))
	return newVersion, nil
}

// LogoutAll bumps the version without changing the password, so every
// outstanding session fails validation while the password stays valid
// for re-entry. Returns the new version.
func (r *Rotator) LogoutAll(ctx context.Context, adminID string) (int, error) {
	current, err := r.currentPrivate(ctx)
	if err != nil {
		return 0, err
	}

	newVersion := current.Version() + 1
	rec := Private{
		SitePassword:        current.SitePassword,
		SitePasswordVersion: newVersion,
		LastPasswordChange:  current.LastPasswordChange,
		LastLogoutAll:       r.now().UTC(),
	}
	if err := r.writeBoth(ctx, rec); err != nil {
		return 0, err
	}

	r.logger.InfoContext(ctx, "all sessions invalidated",
		slog.String("admin_id", adminID),
		slog.Int("new_version", newVersion))
	return newVersion, nil
}

func (r *Rotator) currentPrivate(ctx context.Context) (Private, error) {
	current, err := r.store.ReadPrivate(ctx)
	if errors.Is(err, ErrNotFound) {
		return Private{SitePasswordVersion: DefaultVersion}, nil
	}
	if err != nil {
		return Private{}, fmt.Errorf("reading private settings: %w", err)
	}
	return current, nil
}

func (r *Rotator) writeBoth(ctx context.Context, rec Private) error {
	if err := r.store.WritePrivate(ctx, rec); err != nil {
		return fmt.Errorf("writing private settings: %w", err)
	}
	if err := r.store.WritePublic(ctx, Public{
		SitePassword:        rec.SitePassword,
		SitePasswordVersion: rec.SitePasswordVersion,
	}); err != nil {
		return fmt.Errorf("writing public settings: %w", err)
	}
	return nil
}
