package models

import (
	"net/mail"
	"strings"
	"time"

	id "avgverzoek/pkg/domain"
	dErrors "avgverzoek/pkg/domain-errors"
)

const (
	MinPasswordLength = 8
	// MaxPasswordLength is bcrypt's input limit.
	MaxPasswordLength = 72
	maxEmailLength    = 254
)

// User is a login belonging to exactly one company.
type User struct {
	ID           id.UserID
	CompanyID    id.CompanyID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NormalizeEmail lowercases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email is a bare, well-formed address.
func ValidateEmail(email string) error {
	if email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if len(email) > maxEmailLength {
		return dErrors.New(dErrors.CodeValidation, "email must be at most 254 characters")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return dErrors.New(dErrors.CodeValidation, "email is invalid")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	if len(password) > MaxPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password must be at most 72 bytes")
	}
	return nil
}

// NewUser builds a user from an already hashed password.
func NewUser(userID id.UserID, companyID id.CompanyID, email, passwordHash string, now time.Time) (*User, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash is required")
	}
	if companyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user must belong to a company")
	}
	return &User{
		ID:           userID,
		CompanyID:    companyID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}
