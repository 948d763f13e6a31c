// Package bbolt provides a BBolt-backed settings store for deployments
// that keep the site-lock record in an embedded database.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/jalvarado/sitegate/settings"
)

const (
	bucketName = "settings"
	publicKey  = "public"
	privateKey = "private"
)

// Store implements settings.Store backed by a BBolt database.
type Store struct {
	db *bbolt.DB
}

var _ settings.Store = (*Store)(nil)

// NewStore returns a settings store backed by the given BBolt database.
func NewStore(db *bbolt.DB) *Store {
	return &Store{db: db}
}

// NewStoreFromFile opens a BBolt database at the given path and returns
// a new settings store.
func NewStoreFromFile(path string, options *bbolt.Options) (*Store, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return NewStore(db), nil
}

// Close closes the underlying BBolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ReadPublic(ctx context.Context) (settings.Public, error) {
	var rec settings.Public
	if err := s.read(publicKey, &rec); err != nil {
		return settings.Public{}, err
	}
	return rec, nil
}

func (s *Store) ReadPrivate(ctx context.Context) (settings.Private, error) {
	var rec settings.Private
	if err := s.read(privateKey, &rec); err != nil {
		return settings.Private{}, err
	}
	return rec, nil
}

func (s *Store) WritePublic(ctx context.Context, rec settings.Public) error {
	return s.write(publicKey, rec)
}

func (s *Store) WritePrivate(ctx context.Context, rec settings.Private) error {
	return s.write(privateKey, rec)
}

func (s *Store) read(key string, out any) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return settings.ErrNotFound
		}
		data := b.Get([]byte(key))
		if data == nil {
			return settings.ErrNotFound
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding %s settings: %w", key, err)
		}
		return nil
	})
}

func (s *Store) write(key string, rec any) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
}
