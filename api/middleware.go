package api

import (
	"net/http"
	"strings"
	"time"
)

const sessionCookieName = "sitegate_session"

// adminHeaderName carries the caller identity checked against the
// configured admin allowlist. The gateway in front of this service is
// expected to strip the header from untrusted traffic.
const adminHeaderName = "X-Admin-ID"

// RequireAdmin rejects requests whose admin header is missing or not in
// the configured allowlist.
func (a *API) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(adminHeaderName))
		if id == "" {
			a.audit.logFailure(AuditAdminDenied, r, "missing admin header")
			writeError(w, http.StatusUnauthorized, "admin authentication required")
			return
		}
		if _, ok := a.admins[id]; !ok {
			a.audit.logFailure(AuditAdminDenied, r, "unknown admin id")
			writeError(w, http.StatusUnauthorized, "admin authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeSessionCookie(w http.ResponseWriter, r *http.Request, value string, expiresAt time.Time) {
	secure := requestIsSecure(r)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
	})
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	secure := requestIsSecure(r)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// sessionCookieValue returns the raw cookie value, or "" when absent.
func sessionCookieValue(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	return strings.Contains(strings.ToLower(r.Header.Get("Forwarded")), "proto=https")
}
