// Package cache stores raw analysis responses keyed by the SHA-256 digest of
// the uploaded file bytes. It doubles as the dedup gate for uploads and as a
// durable replay store for rebuilding the database without re-calling the
// analysis API.
package cache

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const bucketName = "analyses"

// Cache is a content-addressed key/value store backed by bbolt.
//
// An entry goes through two writes: Reserve puts an empty placeholder the
// moment a new hash is accepted, Store overwrites it with the completed
// payload. A non-empty entry therefore means "fully processed"; an empty one
// means "submission in flight, do not resubmit". Has followed by Reserve is
// not atomic, so two identical uploads racing through the check can both be
// submitted; the receipts table's file-hash uniqueness is the final authority.
type Cache struct {
	db *bbolt.DB
}

// Open opens (or creates) the cache file at path.
func Open(path string) (*Cache, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache bucket: %w", err)
	}

	return &Cache{db: db}, nil
}

// Has reports whether any entry, placeholder or complete, exists for hash.
func (c *Cache) Has(hash string) (bool, error) {
	var found bool

	err := c.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket([]byte(bucketName)).Get([]byte(hash)) != nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("checking cache entry: %w", err)
	}

	return found, nil
}

// Reserve writes an empty placeholder for hash. Call before submitting the
// file for analysis.
func (c *Cache) Reserve(hash string) error {
	return c.put(hash, nil)
}

// Store overwrites the placeholder with the completed raw response text.
func (c *Cache) Store(hash, rawText string) error {
	return c.put(hash, []byte(rawText))
}

func (c *Cache) put(hash string, value []byte) error {
	err := c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(hash), value)
	})
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}

	return nil
}

// Load returns the raw response text stored for hash. A missing entry is an
// error; a placeholder loads as the empty string.
func (c *Cache) Load(hash string) (string, error) {
	var raw []byte

	err := c.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(bucketName)).Get([]byte(hash))
		if v == nil {
			return fmt.Errorf("no cache entry for %s", hash)
		}

		raw = append(raw, v...)

		return nil
	})
	if err != nil {
		return "", err
	}

	return string(raw), nil
}

// List returns every cached hash.
func (c *Cache) List() ([]string, error) {
	var hashes []string

	err := c.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, _ []byte) error {
			hashes = append(hashes, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing cache entries: %w", err)
	}

	return hashes, nil
}

// Close closes the underlying database file.
func (c *Cache) Close() error {
	return c.db.Close()
}
