package api

// VerifyRequest is the JSON body for POST /auth/verify.
type VerifyRequest struct {
	Password string `json:"password"`
}

// VerifyResponse is returned from POST /auth/verify on success.
type VerifyResponse struct {
	Success bool `json:"success"`
}

// CheckResponse is returned from GET /auth/check. It is a pure boolean
// predicate: the endpoint never reports why a session failed.
type CheckResponse struct {
	Authenticated bool `json:"authenticated"`
}

// SettingsResponse is returned from GET /admin/settings.
type SettingsResponse struct {
	SitePassword        string `json:"sitePassword,omitempty"`
	SitePasswordVersion int    `json:"sitePasswordVersion"`
	LastPasswordChange  string `json:"lastPasswordChange,omitempty"`
	LastLogoutAll       string `json:"lastLogoutAll,omitempty"`
}

// UpdateSettingsRequest is the JSON body for POST /admin/settings.
// Action is "changePassword" (NewPassword required) or "logoutAll".
type UpdateSettingsRequest struct {
	Action      string `json:"action"`
	NewPassword string `json:"newPassword,omitempty"`
}

// UpdateSettingsResponse is returned from POST /admin/settings.
type UpdateSettingsResponse struct {
	Success    bool `json:"success"`
	NewVersion int  `json:"newVersion"`
}

// ErrorResponse is returned for all error cases.
type ErrorResponse struct {
	Error string `json:"error"`
}
