package reserver

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cockroachdb/pebble"
)

// PebbleStore keeps one record per key in a local PebbleDB. Opening the
// store creates the data directory if absent, which is the idempotent
// "create container" step of the persistence contract.
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(dir string) (*PebbleStore, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Close() error { return s.db.Close() }

// Put writes synchronously: the call does not return until the record is
// on stable storage, so acknowledging after Put is safe.
func (s *PebbleStore) Put(rec Record) error {
	rec.StoredAt = time.Now().UTC()
	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := s.db.Set([]byte(rec.Key), val, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set: %w", err)
	}
	return nil
}

func (s *PebbleStore) Get(key string) (Record, bool, error) {
	val, closer, err := s.db.Get([]byte(key))
	if err == pebble.ErrNotFound {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("pebble get: %w", err)
	}
	defer closer.Close()

	var rec Record
	if err := json.Unmarshal(val, &rec); err != nil {
		return Record{}, false, fmt.Errorf("decode record: %w", err)
	}
	return rec, true, nil
}
