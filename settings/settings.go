// Package settings defines the site-lock settings record and the store
// abstraction that backs it. The record exists in two views: the public
// view read on every session validation, and the private view that
// additionally carries audit timestamps.
package settings

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a settings view has never been written.
var ErrNotFound = errors.New("settings not found")

// DefaultVersion is the password version assumed before any rotation
// has ever been recorded.
const DefaultVersion = 1

// Public is the settings view consulted on every session validation.
// It carries the same password and version as the private view; storing
// the password here as well is inherited behavior, kept deliberately.
type Public struct {
	SitePassword        string `json:"sitePassword,omitempty"`
	SitePasswordVersion int    `json:"sitePasswordVersion,omitempty"`
}

// Private is the full settings record, including audit timestamps.
// Timestamps are informational only; correctness rests on the version.
type Private struct {
	SitePassword        string    `json:"sitePassword,omitempty"`
	SitePasswordVersion int       `json:"sitePasswordVersion,omitempty"`
	LastPasswordChange  time.Time `json:"lastPasswordChange,omitempty"`
	LastLogoutAll       time.Time `json:"lastLogoutAll,omitempty"`
}

// Version returns the record's password version, substituting
// DefaultVersion when the field was never set.
func (p Public) Version() int {
	if p.SitePasswordVersion < DefaultVersion {
		return DefaultVersion
	}
	return p.SitePasswordVersion
}

// Version returns the record's password version, substituting
// DefaultVersion when the field was never set.
func (p Private) Version() int {
	if p.SitePasswordVersion < DefaultVersion {
		return DefaultVersion
	}
	return p.SitePasswordVersion
}

// Store is the remote key-value contract for the two settings views.
// Writes are full overwrites of the view, never partial patches. The
// two views are written separately, so concurrent readers may briefly
// observe a private record ahead of the public one.
type Store interface {
	ReadPublic(ctx context.Context) (Public, error)
	ReadPrivate(ctx context.Context) (Private, error)
	WritePublic(ctx context.Context, rec Public) error
	WritePrivate(ctx context.Context, rec Private) error
}
