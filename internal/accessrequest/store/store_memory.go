// Package store persists access requests in memory or PostgreSQL. Every
// lookup is scoped by company.
package store

import (
	"context"
	"fmt"
	"sync"

	"avgverzoek/internal/accessrequest/models"
	id "avgverzoek/pkg/domain"
	"avgverzoek/pkg/platform/sentinel"
)

// ErrNotFound is returned when a request does not exist for the company.
var ErrNotFound = fmt.Errorf("access request not found: %w", sentinel.ErrNotFound)

// ErrDuplicateNumber is returned when the request number is already taken.
var ErrDuplicateNumber = fmt.Errorf("request number already used: %w", sentinel.ErrAlreadyUsed)

// ErrVersionConflict is returned when the stored version moved on.
var ErrVersionConflict = fmt.Errorf("access request was modified concurrently: %w", sentinel.ErrConflict)

// InMemoryStore keeps requests in a map. Stored values are cloned on the
// way in and out.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[id.AccessRequestID]*models.AccessRequest
	numbers  map[models.RequestNumber]id.AccessRequestID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		requests: make(map[id.AccessRequestID]*models.AccessRequest),
		numbers:  make(map[models.RequestNumber]id.AccessRequestID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, r *models.AccessRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.numbers[r.Number]; taken {
		return ErrDuplicateNumber
	}
	if r.Version == 0 {
		r.Version = 1
	}
	s.requests[r.ID] = r.Clone()
	s.numbers[r.Number] = r.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID) (*models.AccessRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.requests[accessRequestID]
	if !ok || r.CompanyID != companyID {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

// FindByIDForUpdate is FindByID; callers serialize through the sharded
// transaction runner.
func (s *InMemoryStore) FindByIDForUpdate(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID) (*models.AccessRequest, error) {
	return s.FindByID(ctx, companyID, accessRequestID)
}

// ListByCompany returns the company's requests, newest receipt first.
func (s *InMemoryStore) ListByCompany(_ context.Context, companyID id.CompanyID) ([]*models.AccessRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.AccessRequest, 0)
	for _, r := range s.requests {
		if r.CompanyID == companyID {
			result = append(result, r.Clone())
		}
	}
	models.SortByReceivedDesc(result)
	return result, nil
}

// Update writes status and checklist if r.Version matches the stored
// version, then bumps r.Version. Free-text fields are owned by UpdateText.
func (s *InMemoryStore) Update(_ context.Context, r *models.AccessRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.requests[r.ID]
	if !ok || current.CompanyID != r.CompanyID {
		return ErrNotFound
	}
	if current.Version != r.Version {
		return ErrVersionConflict
	}

	r.Version++
	next := r.Clone()
	next.InternalNotes = current.InternalNotes
	next.DraftResponse = current.DraftResponse
	s.requests[r.ID] = next
	return nil
}

// UpdateText overwrites notes and draft without a version check.
func (s *InMemoryStore) UpdateText(_ context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID, internalNotes, draftResponse *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.requests[accessRequestID]
	if !ok || current.CompanyID != companyID {
		return ErrNotFound
	}
	current.UpdateText(internalNotes, draftResponse)
	return nil
}
