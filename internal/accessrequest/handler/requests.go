package handler

import (
	"strings"
	"time"

	"avgverzoek/internal/accessrequest/models"
	dErrors "avgverzoek/pkg/domain-errors"
)

const (
	maxSubjectNameLength = 200
	maxEmailLength       = 254
	maxSubjectIDLength   = 32
	maxTextLength        = 20000
	receivedAtLayout     = "2006-01-02"
)

// CreateRequest is the HTTP request body for POST /access-requests.
type CreateRequest struct {
	SubjectName      string `json:"subject_name"`
	SubjectEmail     string `json:"subject_email"`
	SubjectIDPartial string `json:"subject_id_partial"`
	// ReceivedAt is a calendar date (YYYY-MM-DD), taken as midnight UTC.
	ReceivedAt    string `json:"received_at"`
	InternalNotes string `json:"internal_notes"`
	DraftResponse string `json:"draft_response"`

	parsedReceivedAt time.Time
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	// Size validation (fail fast)
	if len(r.SubjectName) > maxSubjectNameLength {
		return dErrors.New(dErrors.CodeValidation, "subject_name must be at most 200 characters")
	}
	if len(r.SubjectEmail) > maxEmailLength {
		return dErrors.New(dErrors.CodeValidation, "subject_email must be at most 254 characters")
	}
	if len(r.SubjectIDPartial) > maxSubjectIDLength {
		return dErrors.New(dErrors.CodeValidation, "subject_id_partial must be at most 32 characters")
	}
	if len(r.InternalNotes) > maxTextLength || len(r.DraftResponse) > maxTextLength {
		return dErrors.New(dErrors.CodeValidation, "text fields must be at most 20000 characters")
	}

	// Missing values are left for the domain to reject.
	r.ReceivedAt = strings.TrimSpace(r.ReceivedAt)
	if r.ReceivedAt != "" {
		t, err := time.ParseInLocation(receivedAtLayout, r.ReceivedAt, time.UTC)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "received_at must be a date formatted as YYYY-MM-DD")
		}
		r.parsedReceivedAt = t
	}
	return nil
}

// ToInput converts the validated request to the domain input.
func (r *CreateRequest) ToInput() models.CreateInput {
	return models.CreateInput{
		SubjectName:      r.SubjectName,
		SubjectEmail:     r.SubjectEmail,
		SubjectIDPartial: r.SubjectIDPartial,
		ReceivedAt:       r.parsedReceivedAt,
		InternalNotes:    r.InternalNotes,
		DraftResponse:    r.DraftResponse,
	}
}

// ToggleSystemRequest is the HTTP request body for POST /access-requests/{id}/systems/toggle.
type ToggleSystemRequest struct {
	System string `json:"system"`
}

func (r *ToggleSystemRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.System = strings.TrimSpace(r.System)
	if r.System == "" {
		return dErrors.New(dErrors.CodeValidation, "system is required")
	}
	return nil
}

// SetStatusRequest is the HTTP request body for PUT /access-requests/{id}/status.
type SetStatusRequest struct {
	Status string `json:"status"`
}

func (r *SetStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Status = strings.TrimSpace(r.Status)
	if r.Status == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	return nil
}

// UpdateNotesRequest is the HTTP request body for PATCH /access-requests/{id}/notes.
// Omitted fields keep their stored value.
type UpdateNotesRequest struct {
	InternalNotes *string `json:"internal_notes"`
	DraftResponse *string `json:"draft_response"`
}

func (r *UpdateNotesRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.InternalNotes == nil && r.DraftResponse == nil {
		return dErrors.New(dErrors.CodeValidation, "internal_notes or draft_response is required")
	}
	if (r.InternalNotes != nil && len(*r.InternalNotes) > maxTextLength) ||
		(r.DraftResponse != nil && len(*r.DraftResponse) > maxTextLength) {
		return dErrors.New(dErrors.CodeValidation, "text fields must be at most 20000 characters")
	}
	return nil
}
