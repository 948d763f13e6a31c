package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jalvarado/sitegate/settings"
)

const (
	actionChangePassword = "changePassword"
	actionLogoutAll      = "logoutAll"
)

// GetSettings handles GET /admin/settings. It returns the private
// record, plaintext password included; RequireAdmin gates the route.
func (a *API) GetSettings(w http.ResponseWriter, r *http.Request) {
	priv, err := a.store.ReadPrivate(r.Context())
	if err != nil && !errors.Is(err, settings.ErrNotFound) {
		writeInternalError(w, "failed to load site settings", err)
		return
	}
	writeJSON(w, http.StatusOK, SettingsResponse{
		SitePassword:        priv.SitePassword,
		SitePasswordVersion: priv.Version(),
		LastPasswordChange:  formatTimestamp(priv.LastPasswordChange),
		LastLogoutAll:       formatTimestamp(priv.LastLogoutAll),
	})
}

// UpdateSettings handles POST /admin/settings. Both actions bump the
// password version, which is what actually invalidates live sessions.
func (a *API) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[UpdateSettingsRequest](w, r, maxAuthBodySize)
	if !ok {
		return
	}
	adminID := r.Header.Get(adminHeaderName)

	var (
		newVersion int
		err        error
	)
	switch req.Action {
	case actionChangePassword:
		newVersion, err = a.rotator.ChangePassword(r.Context(), req.NewPassword, adminID)
		if errors.Is(err, settings.ErrPasswordTooShort) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	case actionLogoutAll:
		newVersion, err = a.rotator.LogoutAll(r.Context(), adminID)
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
		return
	}
	if err != nil {
		writeInternalError(w, "failed to update site settings", err)
		return
	}

	event := AuditPasswordChanged
	if req.Action == actionLogoutAll {
		event = AuditLogoutAll
	}
	a.audit.log(event, r,
		slog.String("admin_id", adminID),
		slog.Int("new_version", newVersion))
	recordSettingsUpdate(req.Action)
	writeJSON(w, http.StatusOK, UpdateSettingsResponse{Success: true, NewVersion: newVersion})
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
