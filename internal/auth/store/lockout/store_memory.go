package lockout

import (
	"context"
	"sync"
	"time"

	"avgverzoek/internal/auth/models"
)

// InMemoryStore keeps lockout records for a single instance. Stale records
// stay until cleared; the lockout service treats them as expired.
type InMemoryStore struct {
	mu      sync.Mutex
	records map[string]models.LoginLockout
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]models.LoginLockout)}
}

func (s *InMemoryStore) Get(_ context.Context, key string) (*models.LoginLockout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *InMemoryStore) Save(_ context.Context, record *models.LoginLockout, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Key] = *record
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}
