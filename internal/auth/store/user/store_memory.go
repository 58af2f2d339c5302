// Package user persists login accounts in memory or PostgreSQL.
package user

import (
	"context"
	"fmt"
	"sync"

	"avgverzoek/internal/auth/models"
	id "avgverzoek/pkg/domain"
	"avgverzoek/pkg/platform/sentinel"
)

var (
	ErrNotFound   = fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	ErrEmailInUse   = fmt.Errorf("email already registered: %w", sentinel.ErrAlreadyUsed)
)

// InMemoryUserStore keys users by ID and by normalized e-mail.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	users   map[id.UserID]*models.User
	byEmail map[string]id.UserID
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[id.UserID]*models.User),
		byEmail: make(map[string]id.UserID),
	}
}

func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := models.NormalizeEmail(user.Email)
	if _, taken := s.byEmail[email]; taken {
		return ErrEmailInUse
	}
	cp := *user
	cp.Email = email
	s.users[user.ID] = &cp
	s.byEmail[email] = user.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.users[userID]
	return &cp, nil
}
