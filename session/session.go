// Package session implements the signed session cookie: a compact JSON
// payload carrying an opaque token, the password version at issuance,
// and an absolute expiry, framed as base64(payload) "." hex(signature).
package session

import "time"

// TokenBytes is the entropy of the opaque session token.
const TokenBytes = 32

// TTL is the fixed session lifetime from issuance.
const TTL = 7 * 24 * time.Hour

// Session is the payload carried inside the signed cookie. It is never
// mutated after minting; revocation happens logically, by expiry or by
// a password-version bump.
type Session struct {
	// Token is a random high-entropy identifier. It is opaque: nothing
	// looks it up server-side, validation rests on Version and
	// ExpiresAt alone. Kept so a server-side registry can be added
	// later without a cookie format change.
	Token string `json:"token"`
	// Version is the site password version active when the session was
	// minted.
	Version int `json:"version"`
	// ExpiresAt is the absolute expiry in epoch milliseconds.
	ExpiresAt int64 `json:"expiresAt"`
}

// Expired reports whether the session's absolute expiry has passed.
func (s Session) Expired(now time.Time) bool {
	return now.UnixMilli() > s.ExpiresAt
}
