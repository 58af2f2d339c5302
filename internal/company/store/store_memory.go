// Package store persists companies in memory or PostgreSQL.
package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"avgverzoek/internal/company/models"
	id "avgverzoek/pkg/domain"
	"avgverzoek/pkg/platform/sentinel"
)

// ErrNotFound is returned when a company does not exist.
var ErrNotFound = fmt.Errorf("company not found: %w", sentinel.ErrNotFound)

type InMemory struct {
	mu        sync.RWMutex
	companies map[id.CompanyID]*models.Company
}

func NewInMemory() *InMemory {
	return &InMemory{companies: make(map[id.CompanyID]*models.Company)}
}

func (s *InMemory) Create(_ context.Context, c *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.companies[c.ID]; exists {
		return fmt.Errorf("company %s: %w", c.ID, sentinel.ErrAlreadyUsed)
	}
	cp := *c
	s.companies[c.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, companyID id.CompanyID) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[companyID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// ListAll returns every company ordered by name.
func (s *InMemory) ListAll(_ context.Context) ([]*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*models.Company, 0, len(s.companies))
	for _, c := range s.companies {
		cp := *c
		result = append(result, &cp)
	}
	slices.SortFunc(result, func(a, b *models.Company) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return result, nil
}
