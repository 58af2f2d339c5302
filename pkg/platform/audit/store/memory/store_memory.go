package memory

import (
	"context"
	"sync"

	id "avgverzoek/pkg/domain"
	audit "avgverzoek/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.CompanyID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.CompanyID][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.CompanyID][]audit.Event)
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID.IsNil() {
		event.ID = id.NewEventID()
	}
	s.events[event.CompanyID] = append(s.events[event.CompanyID], event)
	return nil
}

// ListByAccessRequest returns the request's events oldest first.
func (s *InMemoryStore) ListByAccessRequest(_ context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []audit.Event{}
	for _, e := range s.events[companyID] {
		if e.AccessRequestID == accessRequestID {
			result = append(result, e)
		}
	}
	return result, nil
}

// ListByCompany returns every event recorded for a company, oldest first.
func (s *InMemoryStore) ListByCompany(_ context.Context, companyID id.CompanyID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[companyID]...), nil
}
