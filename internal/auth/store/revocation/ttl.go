// Package revocation keeps the list of logged-out token IDs (jti) until the
// tokens would have expired anyway.
package revocation

import (
	"errors"
	"time"
)

// Clock returns the current time. Overridable in tests.
type Clock func() time.Time

var errInvalidTTL = errors.New("revocation ttl must be positive")

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return errInvalidTTL
	}
	return nil
}
