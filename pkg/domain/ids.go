// Package domain holds the typed identifiers shared across bounded contexts.
//
// Each ID is a distinct named type over uuid.UUID so a CompanyID can never be
// passed where an AccessRequestID is expected. Parse* functions are the trust
// boundary: they reject empty, malformed and nil UUIDs with CodeInvalidInput.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "avgverzoek/pkg/domain-errors"
)

type (
	UserID          uuid.UUID
	CompanyID       uuid.UUID
	AccessRequestID uuid.UUID
	EventID         uuid.UUID
)

func parseUUID(kind, s string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	return u, nil
}

// ParseUserID parses a user ID from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user id", s)
	return UserID(u), err
}

// ParseCompanyID parses a company ID from external input.
func ParseCompanyID(s string) (CompanyID, error) {
	u, err := parseUUID("company id", s)
	return CompanyID(u), err
}

// ParseAccessRequestID parses an access request ID from external input.
func ParseAccessRequestID(s string) (AccessRequestID, error) {
	u, err := parseUUID("access request id", s)
	return AccessRequestID(u), err
}

func NewUserID() UserID                   { return UserID(uuid.New()) }
func NewCompanyID() CompanyID             { return CompanyID(uuid.New()) }
func NewAccessRequestID() AccessRequestID { return AccessRequestID(uuid.New()) }
func NewEventID() EventID                 { return EventID(uuid.New()) }

func (id UserID) String() string          { return uuid.UUID(id).String() }
func (id CompanyID) String() string       { return uuid.UUID(id).String() }
func (id AccessRequestID) String() string { return uuid.UUID(id).String() }
func (id EventID) String() string         { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id CompanyID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id AccessRequestID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }

// MarshalText and UnmarshalText keep JSON payloads in canonical UUID form.

func (id UserID) MarshalText() ([]byte, error)          { return uuid.UUID(id).MarshalText() }
func (id CompanyID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id AccessRequestID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id EventID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error          { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *CompanyID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *AccessRequestID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *EventID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
