package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jalvarado/sitegate/api"
	"github.com/jalvarado/sitegate/session"
	"github.com/jalvarado/sitegate/settings"
	"github.com/jalvarado/sitegate/settings/memory"
)

const (
	testSecret   = "test-gate-secret"
	testPassword = "hunter2"
	testAdminID  = "alice"
)

func setupServer(t *testing.T, store settings.Store, opts ...api.Option) *httptest.Server {
	t.Helper()
	codec, err := session.NewCodec([]byte(testSecret))
	require.NoError(t, err)
	validator := session.NewValidator(codec, store)

	opts = append([]api.Option{api.WithAdminIDs([]string{testAdminID})}, opts...)
	a := api.New(codec, validator, store, opts...)

	r := chi.NewRouter()
	r.Mount("/api/v1", a.Router())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func seededStore(version int) *memory.Store {
	store := memory.New()
	store.Seed(settings.Private{
		SitePassword:        testPassword,
		SitePasswordVersion: version,
	})
	return store
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers ...string) *http.Response {
	t.Helper()
	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, &reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func verify(t *testing.T, client *http.Client, baseURL, password string) *http.Response {
	t.Helper()
	return doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/verify", api.VerifyRequest{
		Password: password,
	})
}

func checkAuthenticated(t *testing.T, client *http.Client, baseURL string) bool {
	t.Helper()
	resp := doJSON(t, client, http.MethodGet, baseURL+"/api/v1/auth/check", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodeBody[api.CheckResponse](t, resp).Authenticated
}

func TestVerify_CorrectPassword(t *testing.T) {
	srv := setupServer(t, seededStore(1))
	client := newClient(t)

	resp := verify(t, client, srv.URL, testPassword)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeBody[api.VerifyResponse](t, resp).Success)

	assert.True(t, checkAuthenticated(t, client, srv.URL))
}

func TestVerify_WrongPassword(t *testing.T) {
	srv := setupServer(t, seededStore(1))
	client := newClient(t)

	resp := verify(t, client, srv.URL, "not-the-password")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	assert.False(t, checkAuthenticated(t, client, srv.URL))
}

func TestVerify_EmptyPassword(t *testing.T) {
	srv := setupServer(t, seededStore(1))
	client := newClient(t)

	resp := verify(t, client, srv.URL, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVerify_NoPasswordConfigured(t *testing.T) {
	srv := setupServer(t, memory.New())
	client := newClient(t)

	resp := verify(t, client, srv.URL, "anything")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// The check endpoint still answers cleanly.
	assert.False(t, checkAuthenticated(t, client, srv.URL))
}

func TestVerify_NormalizedPasswordMatches(t *testing.T) {
	store := memory.New()
	// U+00E9 (precomposed) vs U+0065 U+0301 (combining) compare equal
	// after normalization.
	store.Seed(settings.Private{SitePassword: "café", SitePasswordVersion: 1})
	srv := setupServer(t, store)
	client := newClient(t)

	resp := verify(t, client, srv.URL, "café")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestVerify_RateLimited(t *testing.T) {
	srv := setupServer(t, seededStore(1))
	client := newClient(t)

	for i := 0; i < api.DefaultLimit; i++ {
		resp := verify(t, client, srv.URL, "wrong")
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	// The sixth attempt in the window is throttled even with the
	// correct password.
	resp := verify(t, client, srv.URL, testPassword)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestRateLimit_SeparateClients(t *testing.T) {
	srv := setupServer(t, seededStore(1))
	client := newClient(t)

	for i := 0; i < api.DefaultLimit; i++ {
		resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/auth/verify",
			api.VerifyRequest{Password: "wrong"}, "X-Forwarded-For", "10.0.0.1")
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	// A different forwarded address has its own window.
	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/auth/verify",
		api.VerifyRequest{Password: testPassword}, "X-Forwarded-For", "10.0.0.2")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogout_ClearsCookie(t *testing.T) {
	srv := setupServer(t, seededStore(1))
	client := newClient(t)

	resp := verify(t, client, srv.URL, testPassword)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, checkAuthenticated(t, client, srv.URL))

	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/auth/logout", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.False(t, checkAuthenticated(t, client, srv.URL))
}

func TestAdmin_ChangePasswordInvalidatesSessions(t *testing.T) {
	srv := setupServer(t, seededStore(1))
	client := newClient(t)

	resp := verify(t, client, srv.URL, testPassword)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, checkAuthenticated(t, client, srv.URL))

	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/admin/settings",
		api.UpdateSettingsRequest{Action: "changePassword", NewPassword: "newpass9"},
		"X-Admin-ID", testAdminID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	update := decodeBody[api.UpdateSettingsResponse](t, resp)
	assert.True(t, update.Success)
	assert.Equal(t, 2, update.NewVersion)

	// The old session carries version 1 and is now stale.
	assert.False(t, checkAuthenticated(t, client, srv.URL))

	// The old password no longer verifies; the new one does.
	resp = verify(t, client, srv.URL, testPassword)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = verify(t, client, srv.URL, "newpass9")
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, checkAuthenticated(t, client, srv.URL))
}

func TestAdmin_LogoutAllKeepsPassword(t *testing.T) {
	srv := setupServer(t, seededStore(1))
	client := newClient(t)

	resp := verify(t, client, srv.URL, testPassword)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/admin/settings",
		api.UpdateSettingsRequest{Action: "logoutAll"},
		"X-Admin-ID", testAdminID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	update := decodeBody[api.UpdateSettingsResponse](t, resp)
	assert.Equal(t, 2, update.NewVersion)

	assert.False(t, checkAuthenticated(t, client, srv.URL))

	// Same password still works and mints a session at the new version.
	resp = verify(t, client, srv.URL, testPassword)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, checkAuthenticated(t, client, srv.URL))
}

func TestAdmin_ShortPasswordRejected(t *testing.T) {
	srv := setupServer(t, seededStore(1))
	client := newClient(t)

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/admin/settings",
		api.UpdateSettingsRequest{Action: "changePassword", NewPassword: "abc"},
		"X-Admin-ID", testAdminID)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdmin_UnknownAction(t *testing.T) {
	srv := setupServer(t, seededStore(1))
	client := newClient(t)

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/admin/settings",
		api.UpdateSettingsRequest{Action: "selfDestruct"},
		"X-Admin-ID", testAdminID)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdmin_RequiresIdentity(t *testing.T) {
	srv := setupServer(t, seededStore(1))
	client := newClient(t)

	resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/admin/settings", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/admin/settings", nil,
		"X-Admin-ID", "mallory")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdmin_GetSettings(t *testing.T) {
	srv := setupServer(t, seededStore(3))
	client := newClient(t)

	resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/admin/settings", nil,
		"X-Admin-ID", testAdminID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[api.SettingsResponse](t, resp)
	assert.Equal(t, testPassword, got.SitePassword)
	assert.Equal(t, 3, got.SitePasswordVersion)
}

func TestAdmin_GetSettingsEmptyStore(t *testing.T) {
	srv := setupServer(t, memory.New())
	client := newClient(t)

	resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/admin/settings", nil,
		"X-Admin-ID", testAdminID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[api.SettingsResponse](t, resp)
	assert.Empty(t, got.SitePassword)
	assert.Equal(t, settings.DefaultVersion, got.SitePasswordVersion)
}

func TestOpenAPISpecServed(t *testing.T) {
	srv := setupServer(t, seededStore(1))
	client := newClient(t)

	resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/openapi.yaml", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/yaml", resp.Header.Get("Content-Type"))
}
