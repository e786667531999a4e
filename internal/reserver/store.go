package reserver

import (
	"sync"
	"time"
)

// Record is one durable reservation object: the raw order payload exactly
// as received, plus its declared content type.
type Record struct {
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	StoredAt    time.Time `json:"stored_at"`
}

// Store abstracts the durable record backend. Put overwrites any existing
// record under the same key and must not return before the write is durable.
type Store interface {
	Put(rec Record) error
	Get(key string) (Record, bool, error)
	Close() error
}

// MemStore is a thread-safe in-memory Store, used in tests.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]Record
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]Record)}
}

func (s *MemStore) Put(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.StoredAt = time.Now().UTC()
	s.data[rec.Key] = rec
	return nil
}

func (s *MemStore) Get(key string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[key]
	return rec, ok, nil
}

func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemStore) Close() error { return nil }
