package models

import (
	"strings"
	"time"

	id "avgverzoek/pkg/domain"
)

// Registration creates a company together with its first user. The user's
// e-mail doubles as the company contact address.
type Registration struct {
	CompanyName   string
	KvK           string
	ContactPerson string
	Email         string
	Password      string
}

// Normalize trims the free-text fields and lowercases the e-mail. The
// password is left untouched.
func (r *Registration) Normalize() {
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.KvK = strings.TrimSpace(r.KvK)
	r.ContactPerson = strings.TrimSpace(r.ContactPerson)
	r.Email = NormalizeEmail(r.Email)
}

// TokenResult is returned by register and login.
type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	UserID      id.UserID
	CompanyID   id.CompanyID
}
