package models

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"slices"
	"strings"
	"time"

	id "avgverzoek/pkg/domain"
)

// RequestNumber is the human-facing identifier, AVG-<year>-<4 digits>.
// Uniqueness is enforced by storage; the service regenerates on conflict.
type RequestNumber string

var requestNumberPattern = regexp.MustCompile(`^AVG-\d{4}-\d{4}$`)

// GenerateRequestNumber draws a number in 1000..9999 for now's year.
func GenerateRequestNumber(now time.Time) RequestNumber {
	return RequestNumber(fmt.Sprintf("AVG-%d-%d", now.Year(), 1000+rand.IntN(9000)))
}

// ParseRequestNumber validates the number format.
func ParseRequestNumber(s string) (RequestNumber, error) {
	if !requestNumberPattern.MatchString(s) {
		return "", fmt.Errorf("invalid request number %q", s)
	}
	return RequestNumber(s), nil
}

func (n RequestNumber) String() string { return string(n) }

// AccessRequest is a data subject access request (DSAR) and the aggregate
// root of this package.
//
// Invariants:
//   - Deadline == ReceivedAt + StatutoryPeriod, fixed at creation
//   - Number matches AVG-<year>-<4 digits> and never changes
//   - CompletedAt != nil iff Status == StatusCompleted
//   - CheckedSystems holds catalog systems only, no duplicates, catalog order
type AccessRequest struct {
	ID               id.AccessRequestID
	CompanyID        id.CompanyID
	Number           RequestNumber
	SubjectName      string
	SubjectEmail     string
	SubjectIDPartial string
	ReceivedAt       time.Time
	Deadline         time.Time
	Status           Status
	CheckedSystems   []System
	InternalNotes    string
	DraftResponse    string
	CompletedAt      *time.Time
	CreatedAt        time.Time
	// Version is the optimistic concurrency token managed by storage.
	Version int
}

// CreateInput carries operator-supplied fields for a new request.
// SubjectEmail and SubjectIDPartial are stored as given.
type CreateInput struct {
	SubjectName      string
	SubjectEmail     string
	SubjectIDPartial string
	ReceivedAt       time.Time
	InternalNotes    string
	// DraftResponse overrides the default acknowledgement letter when non-empty.
	DraftResponse string
}

// NewAccessRequest validates input and builds a request in status new with
// an empty checklist.
func NewAccessRequest(accessRequestID id.AccessRequestID, companyID id.CompanyID, number RequestNumber, in CreateInput, now time.Time) (*AccessRequest, error) {
	name := strings.TrimSpace(in.SubjectName)
	if name == "" {
		return nil, &ValidationError{Kind: KindMissingSubjectName}
	}
	if in.ReceivedAt.IsZero() {
		return nil, &ValidationError{Kind: KindMissingReceivedDate}
	}

	draft := in.DraftResponse
	if strings.TrimSpace(draft) == "" {
		letter, err := RenderResponseLetter(name)
		if err != nil {
			return nil, fmt.Errorf("render response letter: %w", err)
		}
		draft = letter
	}

	return &AccessRequest{
		ID:               accessRequestID,
		CompanyID:        companyID,
		Number:           number,
		SubjectName:      name,
		SubjectEmail:     strings.TrimSpace(in.SubjectEmail),
		SubjectIDPartial: strings.TrimSpace(in.SubjectIDPartial),
		ReceivedAt:       in.ReceivedAt,
		Deadline:         ComputeDeadline(in.ReceivedAt),
		Status:           StatusNew,
		CheckedSystems:   []System{},
		InternalNotes:    in.InternalNotes,
		DraftResponse:    draft,
		CreatedAt:        now,
		Version:          1,
	}, nil
}

// DaysRemaining is the countdown shown for this request at now.
func (r *AccessRequest) DaysRemaining(now time.Time) int {
	return DaysRemaining(r.Deadline, now)
}

// Urgency is the display tier at now.
func (r *AccessRequest) Urgency(now time.Time) Urgency {
	return UrgencyFor(r.DaysRemaining(now))
}

// UpdateText replaces the free-text fields. Nil leaves a field unchanged.
func (r *AccessRequest) UpdateText(internalNotes, draftResponse *string) {
	if internalNotes != nil {
		r.InternalNotes = *internalNotes
	}
	if draftResponse != nil {
		r.DraftResponse = *draftResponse
	}
}

// Clone returns a deep copy so stores never share slices or pointers with callers.
func (r *AccessRequest) Clone() *AccessRequest {
	if r == nil {
		return nil
	}
	c := *r
	c.CheckedSystems = slices.Clone(r.CheckedSystems)
	if c.CheckedSystems == nil {
		c.CheckedSystems = []System{}
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
