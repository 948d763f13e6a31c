package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jalvarado/sitegate/settings"
)

// State is the terminal outcome of validating one cookie value. Every
// state except StateValid maps to "not authenticated" at the caller;
// the distinction exists for logging and tests, never for responses.
type State int

const (
	StateNoCookie State = iota
	StateMalformed
	StateBadSignature
	StateExpired
	StateStaleVersion
	StateValid
)

// Authenticated reports whether the state grants access.
func (s State) Authenticated() bool {
	return s == StateValid
}

func (s State) String() string {
	switch s {
	case StateNoCookie:
		return "no_cookie"
	case StateMalformed:
		return "malformed"
	case StateBadSignature:
		return "bad_signature"
	case StateExpired:
		return "expired"
	case StateStaleVersion:
		return "stale_version"
	case StateValid:
		return "valid"
	default:
		return "unknown"
	}
}

// DefaultFetchTimeout bounds the settings-store read during validation.
const DefaultFetchTimeout = 8 * time.Second

// Validator checks incoming session cookies against the signing key and
// the current password version. Validation is side-effect-free and safe
// to run on every request.
type Validator struct {
	codec        *Codec
	store        settings.Store
	fetchTimeout time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithValidatorLogger sets the structured logger for store-fetch
// failures surfaced during validation.
func WithValidatorLogger(logger *slog.Logger) ValidatorOption {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithFetchTimeout overrides the settings-store fetch bound.
func WithFetchTimeout(d time.Duration) ValidatorOption {
	return func(v *Validator) {
		v.fetchTimeout = d
	}
}

// WithValidatorClock overrides the time source, for tests.
func WithValidatorClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) {
		v.now = now
	}
}

// NewValidator creates a Validator using the given codec and store.
func NewValidator(codec *Codec, store settings.Store, opts ...ValidatorOption) *Validator {
	v := &Validator{
		codec:        codec,
		store:        store,
		fetchTimeout: DefaultFetchTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v
}

// Validate evaluates one cookie value: signature, expiry, then the
// embedded password version against the store's current version. A
// validation racing a rotation may observe either version; that window
// is accepted, not worked around.
func (v *Validator) Validate(ctx context.Context, cookieValue string) State {
	if cookieValue == "" {
		return StateNoCookie
	}

	s, err := v.codec.Decode(cookieValue)
	switch {
	case errors.Is(err, ErrBadSignature):
		return StateBadSignature
	case err != nil:
		return StateMalformed
	}

	if s.Expired(v.now()) {
		return StateExpired
	}

	if s.Version < v.currentVersion(ctx) {
		return StateStaleVersion
	}
	return StateValid
}

// currentVersion reads the authoritative password version. When the
// store is unreachable it falls back to DefaultVersion, so sessions
// minted at version 1 keep validating through a store outage.
func (v *Validator) currentVersion(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, v.fetchTimeout)
	defer cancel()

	pub, err := v.store.ReadPublic(ctx)
	if err != nil {
		v.logger.WarnContext(ctx, "settings fetch failed during validation, assuming default version",
			slog.String("error", err.Error()))
		return settings.DefaultVersion
	}
	return pub.Version()
}
