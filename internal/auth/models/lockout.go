package models

import (
	"time"

	dErrors "avgverzoek/pkg/domain-errors"
)

// LoginLockout tracks failed logins for one e-mail and client IP pair.
type LoginLockout struct {
	Key           string     `json:"key"`
	FailureCount  int        `json:"failure_count"`
	WindowStart   time.Time  `json:"window_start"`
	LastFailureAt time.Time  `json:"last_failure_at"`
	LockedUntil   *time.Time `json:"locked_until,omitempty"`
}

// LockoutKey combines the login e-mail and client IP.
func LockoutKey(email, ip string) string {
	return NormalizeEmail(email) + "|" + ip
}

func NewLoginLockout(key string, now time.Time) (*LoginLockout, error) {
	if key == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "lockout key cannot be empty")
	}
	return &LoginLockout{Key: key, WindowStart: now}, nil
}

func (l *LoginLockout) IsLockedAt(now time.Time) bool {
	return l.LockedUntil != nil && now.Before(*l.LockedUntil)
}

// RecordFailureAt counts a failure, starting a fresh window when the previous
// one has passed.
func (l *LoginLockout) RecordFailureAt(now time.Time, window time.Duration) {
	if now.Sub(l.WindowStart) >= window {
		l.WindowStart = now
		l.FailureCount = 0
	}
	l.FailureCount++
	l.LastFailureAt = now
}

func (l *LoginLockout) ShouldLock(maxAttempts int) bool {
	return l.FailureCount >= maxAttempts
}

// ApplyLock locks the pair and starts a new window once the lock ends.
func (l *LoginLockout) ApplyLock(d time.Duration, now time.Time) {
	until := now.Add(d)
	l.LockedUntil = &until
	l.WindowStart = until
	l.FailureCount = 0
}

// ExpiresAt is when the record no longer affects logins and may be dropped.
func (l *LoginLockout) ExpiresAt(window time.Duration) time.Time {
	end := l.WindowStart.Add(window)
	if l.LockedUntil != nil && l.LockedUntil.After(end) {
		return *l.LockedUntil
	}
	return end
}
