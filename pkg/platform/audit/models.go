package audit

import (
	"context"
	"time"

	id "avgverzoek/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers events that prove how a data subject access
	// request was handled. Persisted synchronously inside the mutation's
	// transaction.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers authentication failures and token revocations.
	// Buffered and flushed asynchronously.
	CategorySecurity EventCategory = "security"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	ID              id.EventID
	Category        EventCategory
	Timestamp       time.Time
	CompanyID       id.CompanyID
	UserID          id.UserID
	AccessRequestID id.AccessRequestID
	// Subject is a human-readable handle: the request number for access
	// request events, the login e-mail for auth events.
	Subject  string
	Action   string
	Decision string
	Reason   string
	// RequestID is the HTTP correlation ID.
	RequestID string
	// IP is the client address, recorded for security events.
	IP string
}

type AuditEvent string

const (
	// Access request events
	EventAccessRequestCreated AuditEvent = "access_request_created"
	EventStatusChanged        AuditEvent = "access_request_status_changed"
	EventSystemChecked        AuditEvent = "access_request_system_checked"
	EventSystemUnchecked      AuditEvent = "access_request_system_unchecked"
	EventNotesUpdated         AuditEvent = "access_request_notes_updated"
	EventCompanyRegistered    AuditEvent = "company_registered"
	EventUserCreated          AuditEvent = "user_created"

	// Auth events
	EventLoginFailed  AuditEvent = "login_failed"
	EventLoginLocked  AuditEvent = "login_locked"
	EventTokenRevoked AuditEvent = "token_revoked"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAccessRequestCreated: CategoryCompliance,
	EventStatusChanged:        CategoryCompliance,
	EventSystemChecked:        CategoryCompliance,
	EventSystemUnchecked:      CategoryCompliance,
	EventNotesUpdated:         CategoryCompliance,
	EventCompanyRegistered:    CategoryCompliance,
	EventUserCreated:          CategoryCompliance,

	EventLoginFailed:  CategorySecurity,
	EventLoginLocked:  CategorySecurity,
	EventTokenRevoked: CategorySecurity,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategorySecurity so they are never mistaken for
// compliance evidence.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategorySecurity
}

// Store persists audit events. Implementations must honor a transaction
// carried in ctx (see pkg/platform/tx).
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByAccessRequest(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID) ([]Event, error)
}
