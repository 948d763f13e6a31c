// Package rest provides a settings store backed by a remote JSON
// key-value service over HTTP. It is the fallback client used when no
// embedded database is configured: each view lives at a fixed path and
// is read and replaced wholesale.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jalvarado/sitegate/settings"
)

// DefaultTimeout bounds every remote call. A slow store must surface as
// store-unreachable, not hang the request.
const DefaultTimeout = 8 * time.Second

const (
	publicPath  = "siteSettingsPublic.json"
	privatePath = "siteSettings.json"
)

// Store implements settings.Store against a remote JSON KV service.
type Store struct {
	baseURL   string
	authToken string
	client    *http.Client
}

var _ settings.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) {
		s.client = c
	}
}

// WithAuthToken appends an auth token to every request.
func WithAuthToken(token string) Option {
	return func(s *Store) {
		s.authToken = token
	}
}

// NewStore creates a REST settings store rooted at baseURL.
func NewStore(baseURL string, opts ...Option) *Store {
	s := &Store{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) ReadPublic(ctx context.Context) (settings.Public, error) {
	var rec settings.Public
	if err := s.read(ctx, publicPath, &rec); err != nil {
		return settings.Public{}, err
	}
	return rec, nil
}

func (s *Store) ReadPrivate(ctx context.Context) (settings.Private, error) {
	var rec settings.Private
	if err := s.read(ctx, privatePath, &rec); err != nil {
		return settings.Private{}, err
	}
	return rec, nil
}

func (s *Store) WritePublic(ctx context.Context, rec settings.Public) error {
	return s.write(ctx, publicPath, rec)
}

func (s *Store) WritePrivate(ctx context.Context, rec settings.Private) error {
	return s.write(ctx, privatePath, rec)
}

func (s *Store) read(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint(path), nil)
	if err != nil {
		return fmt.Errorf("building settings request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching settings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return settings.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("settings store returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading settings response: %w", err)
	}
	// The upstream KV answers "null" for paths that were never written.
	if len(bytes.TrimSpace(body)) == 0 || bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return settings.ErrNotFound
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding settings response: %w", err)
	}
	return nil
}

func (s *Store) write(ctx context.Context, path string, rec any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding settings record: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.endpoint(path), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building settings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("settings store returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *Store) endpoint(path string) string {
	u := s.baseURL + "/" + path
	if s.authToken != "" {
		u += "?auth=" + url.QueryEscape(s.authToken)
	}
	return u
}
