package models

import (
	"net/mail"
	"strings"
	"time"

	id "avgverzoek/pkg/domain"
	dErrors "avgverzoek/pkg/domain-errors"
)

// Plan is the subscription tier of a company.
type Plan string

const (
	PlanGratis Plan = "gratis"
	PlanMKB    Plan = "mkb"
	PlanBureau Plan = "bureau"
)

func (p Plan) IsValid() bool {
	switch p {
	case PlanGratis, PlanMKB, PlanBureau:
		return true
	}
	return false
}

const maxNameLength = 128

// Company is the organization that owns access requests. Every user and
// request belongs to exactly one company.
//
// Invariants:
//   - Name is non-empty and at most 128 characters
//   - Plan is one of gratis, mkb, bureau
//   - Email, when set, is a valid address; reminders are sent there
type Company struct {
	ID            id.CompanyID
	Name          string
	KvK           string
	ContactPerson string
	Email         string
	Plan          Plan
	CreatedAt     time.Time
}

// Profile carries the optional company details collected at registration.
type Profile struct {
	KvK           string
	ContactPerson string
	Email         string
}

// NewCompany validates name and profile and returns a company on the gratis
// plan.
func NewCompany(companyID id.CompanyID, name string, profile Profile, now time.Time) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "company name cannot be empty")
	}
	if len(name) > maxNameLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "company name must be 128 characters or less")
	}
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "company email is invalid")
		}
	}
	return &Company{
		ID:            companyID,
		Name:          name,
		KvK:           strings.TrimSpace(profile.KvK),
		ContactPerson: strings.TrimSpace(profile.ContactPerson),
		Email:         email,
		Plan:          PlanGratis,
		CreatedAt:     now,
	}, nil
}
