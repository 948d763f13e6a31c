package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jalvarado/sitegate/settings"
)

// fakeKV mimics the remote JSON KV: GET returns the stored document or
// "null", PUT replaces it wholesale.
type fakeKV struct {
	mu   sync.Mutex
	docs map[string]json.RawMessage
}

func newFakeKV() *fakeKV {
	return &fakeKV{docs: make(map[string]json.RawMessage)}
}

func (f *fakeKV) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		doc, ok := f.docs[r.URL.Path]
		if !ok {
			w.Write([]byte("null"))
			return
		}
		w.Write(doc)
	case http.MethodPut:
		var doc json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.docs[r.URL.Path] = doc
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestReadMissingReturnsNotFound(t *testing.T) {
	srv := httptest.NewServer(newFakeKV())
	defer srv.Close()
	s := NewStore(srv.URL)

	_, err := s.ReadPublic(context.Background())
	assert.ErrorIs(t, err, settings.ErrNotFound)
}

func TestWriteThenRead(t *testing.T) {
	srv := httptest.NewServer(newFakeKV())
	defer srv.Close()
	s := NewStore(srv.URL)
	ctx := context.Background()

	require.NoError(t, s.WritePrivate(ctx, settings.Private{
		SitePassword:        "hunter2",
		SitePasswordVersion: 2,
	}))
	require.NoError(t, s.WritePublic(ctx, settings.Public{
		SitePassword:        "hunter2",
		SitePasswordVersion: 2,
	}))

	priv, err := s.ReadPrivate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", priv.SitePassword)

	pub, err := s.ReadPublic(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, pub.SitePasswordVersion)
}

func TestAuthTokenIsSent(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("auth")
		w.Write([]byte(`{"sitePasswordVersion":1}`))
	}))
	defer srv.Close()

	s := NewStore(srv.URL, WithAuthToken("secret-token"))
	_, err := s.ReadPublic(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "secret-token", gotToken)
}

func TestServerErrorIsNotNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewStore(srv.URL)
	_, err := s.ReadPublic(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, settings.ErrNotFound,
		"a store outage must be distinguishable from an unset record")
}

func TestUnreachableStore(t *testing.T) {
	s := NewStore("http://127.0.0.1:1")

	_, err := s.ReadPublic(context.Background())
	assert.Error(t, err)
}
