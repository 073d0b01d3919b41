// Package boltstore is the durable overflow for caches that are otherwise
// purely in-memory: the PostgreSQL Agent's per-tenant SchemaSnapshot and
// the Knowledge-Base Agent's passage retrievals survive a restart here, so
// a cold-started gateway doesn't force synchronous introspection or a
// knowledge-base round trip on every tenant's first query.
package boltstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/boltdb/bolt"
)

var (
	bucketSchemaSnapshots = []byte("schema_snapshots")
	bucketKBPassages      = []byte("kb_passages")
)

// Store wraps a BoltDB file and manages its lifecycle.
type Store struct {
	db *bolt.DB
}

// Open creates the parent directory if needed and opens (or creates) the
// BoltDB file at path, ensuring both buckets exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("boltstore: create directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketSchemaSnapshots, bucketKBPassages} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %q: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("boltstore: create buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying BoltDB file.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutSchemaSnapshot persists the marshaled SchemaSnapshot for tenantID.
func (s *Store) PutSchemaSnapshot(tenantID string, data []byte) error {
	return s.put(bucketSchemaSnapshots, tenantID, data)
}

// GetSchemaSnapshot returns the marshaled SchemaSnapshot for tenantID, if any.
func (s *Store) GetSchemaSnapshot(tenantID string) ([]byte, bool, error) {
	return s.get(bucketSchemaSnapshots, tenantID)
}

// PutKBPassages persists the marshaled passage list for cacheKey (derived
// from tenant + normalized query).
func (s *Store) PutKBPassages(cacheKey string, data []byte) error {
	return s.put(bucketKBPassages, cacheKey, data)
}

// GetKBPassages returns the marshaled passage list for cacheKey, if any.
func (s *Store) GetKBPassages(cacheKey string) ([]byte, bool, error) {
	return s.get(bucketKBPassages, cacheKey)
}

func (s *Store) put(bucket []byte, key string, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *Store) get(bucket []byte, key string) ([]byte, bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("boltstore: read: %w", err)
	}
	return data, data != nil, nil
}
