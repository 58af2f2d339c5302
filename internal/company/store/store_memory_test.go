package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"avgverzoek/internal/company/models"
	id "avgverzoek/pkg/domain"
	"avgverzoek/pkg/platform/sentinel"
)

type CompanyStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestCompanyStoreSuite(t *testing.T) {
	suite.Run(t, new(CompanyStoreSuite))
}

func (s *CompanyStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *CompanyStoreSuite) newCompany(name string) *models.Company {
	c, err := models.NewCompany(id.NewCompanyID(), name, models.Profile{}, time.Now())
	s.Require().NoError(err)
	return c
}

func (s *CompanyStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds company by ID", func() {
		c := s.newCompany("Bakkerij Jansen")
		s.Require().NoError(s.store.Create(s.ctx, c))

		found, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(c.Name, found.Name)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.NewCompanyID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects a second create with the same ID", func() {
		c := s.newCompany("Dubbel")
		s.Require().NoError(s.store.Create(s.ctx, c))
		s.ErrorIs(s.store.Create(s.ctx, c), sentinel.ErrAlreadyUsed)
	})
}

func (s *CompanyStoreSuite) TestListAllOrderedByName() {
	s.Require().NoError(s.store.Create(s.ctx, s.newCompany("Zuivel BV")))
	s.Require().NoError(s.store.Create(s.ctx, s.newCompany("Autobedrijf De Boer")))

	all, err := s.store.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("Autobedrijf De Boer", all[0].Name)
	s.Equal("Zuivel BV", all[1].Name)
}
