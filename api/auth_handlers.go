package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jalvarado/sitegate/internal/util"
	"github.com/jalvarado/sitegate/session"
)

var errNoPassword = errors.New("no site password configured")

// Verify handles POST /auth/verify. A correct password mints a signed
// session cookie carrying the password version active at login time.
func (a *API) Verify(w http.ResponseWriter, r *http.Request) {
	// Rate-limit before any store access. The attempt counts against
	// the quota whether or not the password turns out to be correct.
	client := clientID(r)
	if ok, retryAfter := a.limiter.Allow(client); !ok {
		a.audit.logFailure(AuditVerifyRateLimited, r, "rate limited",
			slog.String("client_id", client))
		recordVerify("rate_limited")
		writeRateLimited(w, retryAfter)
		return
	}

	req, ok := decodeJSON[VerifyRequest](w, r, maxAuthBodySize)
	if !ok {
		recordVerify("bad_request")
		return
	}
	if req.Password == "" {
		recordVerify("bad_request")
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}

	pub, err := a.store.ReadPublic(r.Context())
	if err != nil {
		recordVerify("store_error")
		writeInternalError(w, "failed to load site settings", err)
		return
	}
	if pub.SitePassword == "" {
		// No password has been configured yet; nothing can match.
		recordVerify("store_error")
		writeInternalError(w, "site password is not configured", errNoPassword)
		return
	}

	if !util.SecureCompareString(util.Normalize(req.Password), util.Normalize(pub.SitePassword)) {
		a.audit.logFailure(AuditVerifyFailure, r, "wrong password")
		recordVerify("failure")
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	token, err := util.RandomToken(session.TokenBytes)
	if err != nil {
		recordVerify("store_error")
		writeInternalError(w, "failed to generate session token", err)
		return
	}
	now := a.now()
	sess := session.Session{
		Token:     token,
		Version:   pub.Version(),
		ExpiresAt: now.Add(session.TTL).UnixMilli(),
	}
	value, err := a.codec.Encode(sess)
	if err != nil {
		recordVerify("store_error")
		writeInternalError(w, "failed to encode session", err)
		return
	}

	writeSessionCookie(w, r, value, now.Add(session.TTL))
	a.audit.log(AuditVerifySuccess, r, slog.Int("session_version", sess.Version))
	recordVerify("success")
	writeJSON(w, http.StatusOK, VerifyResponse{Success: true})
}

// Check handles GET /auth/check. It always answers 200; the boolean is
// the only signal, so probing the endpoint reveals nothing about why a
// cookie was rejected.
func (a *API) Check(w http.ResponseWriter, r *http.Request) {
	state := a.validator.Validate(r.Context(), sessionCookieValue(r))
	recordCheck(state)
	writeJSON(w, http.StatusOK, CheckResponse{Authenticated: state.Authenticated()})
}

// Logout handles POST /auth/logout. It only clears the client's cookie;
// the signed value itself stays valid until expiry, so a captured copy
// is revoked only by a version bump.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, r)
	a.audit.log(AuditLogout, r)
	writeJSON(w, http.StatusOK, VerifyResponse{Success: true})
}
