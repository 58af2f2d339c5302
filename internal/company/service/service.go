// Package service exposes company lookups to handlers and the reminder job.
package service

import (
	"context"
	"errors"
	"fmt"

	"avgverzoek/internal/company/models"
	id "avgverzoek/pkg/domain"
	dErrors "avgverzoek/pkg/domain-errors"
	"avgverzoek/pkg/platform/sentinel"
)

type Store interface {
	FindByID(ctx context.Context, companyID id.CompanyID) (*models.Company, error)
	ListAll(ctx context.Context) ([]*models.Company, error)
}

type Service struct {
	store Store
}

func New(store Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("company store is required")
	}
	return &Service{store: store}, nil
}

// Get returns the company the caller belongs to.
func (s *Service) Get(ctx context.Context, companyID id.CompanyID) (*models.Company, error) {
	c, err := s.store.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "company not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load company")
	}
	return c, nil
}

// ListAll returns every company, ordered by name.
func (s *Service) ListAll(ctx context.Context) ([]*models.Company, error) {
	companies, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list companies")
	}
	return companies, nil
}
