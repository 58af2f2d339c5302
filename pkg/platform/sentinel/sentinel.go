package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into coded domain errors.
//
//   - ErrNotFound: entity does not exist (or is not visible to the caller's company)
//   - ErrConflict: optimistic version check failed or a unique key is taken
//   - ErrAlreadyUsed: a natural key such as an e-mail address is already registered
//   - ErrUnavailable: backing service temporarily unavailable
//
// Validation failures are not sentinels; they are domain errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrAlreadyUsed = errors.New("already used")
	ErrUnavailable = errors.New("unavailable")
)
