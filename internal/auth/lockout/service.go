// Package lockout throttles password guessing: too many failed logins for one
// e-mail and client IP lock that pair out for a while.
package lockout

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"avgverzoek/internal/auth/models"
	"avgverzoek/internal/platform/config"
	dErrors "avgverzoek/pkg/domain-errors"
	"avgverzoek/pkg/requestcontext"
)

type Store interface {
	Get(ctx context.Context, key string) (*models.LoginLockout, error)
	Save(ctx context.Context, record *models.LoginLockout, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Service struct {
	store  Store
	config config.LockoutConfig
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithConfig(cfg config.LockoutConfig) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("lockout store is required")
	}
	svc := &Service{
		store:  store,
		config: config.Default().Lockout,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc, nil
}

// Check fails with too_many_requests while the pair is locked.
func (s *Service) Check(ctx context.Context, email, ip string) error {
	record, err := s.store.Get(ctx, models.LockoutKey(email, ip))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load login lockout")
	}
	if record != nil && record.IsLockedAt(requestcontext.Now(ctx)) {
		return dErrors.New(dErrors.CodeTooManyRequests, "too many failed login attempts, try again later")
	}
	return nil
}

// RecordFailure counts a failed login and reports whether it locked the pair.
func (s *Service) RecordFailure(ctx context.Context, email, ip string) (bool, error) {
	key := models.LockoutKey(email, ip)
	now := requestcontext.Now(ctx)

	record, err := s.store.Get(ctx, key)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load login lockout")
	}
	if record == nil {
		if record, err = models.NewLoginLockout(key, now); err != nil {
			return false, err
		}
	}

	record.RecordFailureAt(now, s.config.Window)
	locked := record.ShouldLock(s.config.MaxAttempts)
	if locked {
		record.ApplyLock(s.config.LockDuration, now)
		s.logger.WarnContext(ctx, "login locked out",
			"ip", ip,
			"locked_until", record.LockedUntil,
		)
	}

	ttl := record.ExpiresAt(s.config.Window).Sub(now)
	if err := s.store.Save(ctx, record, ttl); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save login lockout")
	}
	return locked, nil
}

// Clear forgets the pair's failures after a successful login.
func (s *Service) Clear(ctx context.Context, email, ip string) error {
	if err := s.store.Delete(ctx, models.LockoutKey(email, ip)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear login lockout")
	}
	return nil
}
