// Package memory provides an in-process settings store for tests and
// single-node development setups. State is lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/jalvarado/sitegate/settings"
)

// Store is a thread-safe in-memory settings.Store.
type Store struct {
	mu         sync.RWMutex
	public     settings.Public
	private    settings.Private
	hasPublic  bool
	hasPrivate bool
}

var _ settings.Store = (*Store)(nil)

// New creates an empty in-memory settings store.
func New() *Store {
	return &Store{}
}

// Seed installs both views of the given private record, mirroring what
// a rotation would write. Intended for tests and bootstrap.
func (s *Store) Seed(rec settings.Private) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.private = rec
	s.hasPrivate = true
	s.public = settings.Public{
		SitePassword:        rec.SitePassword,
		SitePasswordVersion: rec.SitePasswordVersion,
	}
	s.hasPublic = true
}

func (s *Store) ReadPublic(ctx context.Context) (settings.Public, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasPublic {
		return settings.Public{}, settings.ErrNotFound
	}
	return s.public, nil
}

func (s *Store) ReadPrivate(ctx context.Context) (settings.Private, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasPrivate {
		return settings.Private{}, settings.ErrNotFound
	}
	return s.private, nil
}

func (s *Store) WritePublic(ctx context.Context, rec settings.Public) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.public = rec
	s.hasPublic = true
	return nil
}

func (s *Store) WritePrivate(ctx context.Context, rec settings.Private) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.private = rec
	s.hasPrivate = true
	return nil
}
