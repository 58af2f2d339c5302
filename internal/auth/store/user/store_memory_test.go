package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"avgverzoek/internal/auth/models"
	id "avgverzoek/pkg/domain"
	"avgverzoek/pkg/platform/sentinel"
)

type InMemoryUserStoreSuite struct {
	suite.Suite
	store *InMemoryUserStore
	ctx   context.Context
}

func (s *InMemoryUserStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func TestInMemoryUserStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryUserStoreSuite))
}

func (s *InMemoryUserStoreSuite) newUser(email string) *models.User {
	u, err := models.NewUser(id.NewUserID(), id.NewCompanyID(), email, "hash", time.Now())
	s.Require().NoError(err)
	return u
}

func (s *InMemoryUserStoreSuite) TestLookup() {
	u := s.newUser("jan@example.nl")
	s.Require().NoError(s.store.Create(s.ctx, u))

	s.Run("by id", func() {
		found, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(u, found)
	})

	s.Run("by email ignores case", func() {
		found, err := s.store.FindByEmail(s.ctx, " JAN@example.NL")
		s.Require().NoError(err)
		s.Equal(u.ID, found.ID)
	})

	s.Run("unknown email", func() {
		_, err := s.store.FindByEmail(s.ctx, "piet@example.nl")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns a copy", func() {
		found, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		found.PasswordHash = "changed"
		again, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal("hash", again.PasswordHash)
	})
}

func (s *InMemoryUserStoreSuite) TestDuplicateEmail() {
	s.Require().NoError(s.store.Create(s.ctx, s.newUser("jan@example.nl")))

	err := s.store.Create(s.ctx, s.newUser("jan@example.nl"))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}
