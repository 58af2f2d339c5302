package models

import (
	"time"

	id "avgverzoek/pkg/domain"
)

// Status is operator-controlled. Any status may follow any other so clerical
// mistakes can be corrected; expired is never set automatically.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusExpired    Status = "expired"
)

var allStatuses = []Status{StatusNew, StatusInProgress, StatusCompleted, StatusExpired}

// AllStatuses lists every status in display order.
func AllStatuses() []Status {
	return append([]Status(nil), allStatuses...)
}

// ParseStatus validates an external status value.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", &ValidationError{Kind: KindUnknownStatus, Value: s}
	}
	return status, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusCompleted, StatusExpired:
		return true
	}
	return false
}

// IsOpen reports whether the request still needs work.
func (s Status) IsOpen() bool {
	return s == StatusNew || s == StatusInProgress
}

func (s Status) String() string { return string(s) }

// Label is the Dutch display name.
func (s Status) Label() string {
	switch s {
	case StatusNew:
		return "Nieuw"
	case StatusInProgress:
		return "In behandeling"
	case StatusCompleted:
		return "Afgerond"
	case StatusExpired:
		return "Verlopen"
	}
	return string(s)
}

// Color is the badge color for the status.
func (s Status) Color() string {
	switch s {
	case StatusNew:
		return "#3B82F6"
	case StatusInProgress:
		return "#F97316"
	case StatusCompleted:
		return "#22C55E"
	case StatusExpired:
		return "#EF4444"
	}
	return ""
}

// StatusChanged is handed to the notifier after a transition commits.
type StatusChanged struct {
	AccessRequestID id.AccessRequestID
	CompanyID       id.CompanyID
	Number          RequestNumber
	Previous        Status
	Status          Status
	At              time.Time
}

// ApplyStatus moves the request to next. Entering completed stamps
// CompletedAt; any other status clears it. Nothing else is touched.
func (r *AccessRequest) ApplyStatus(next Status, now time.Time) (StatusChanged, error) {
	if !next.IsValid() {
		return StatusChanged{}, &ValidationError{Kind: KindUnknownStatus, Value: string(next)}
	}

	previous := r.Status
	r.Status = next
	if next == StatusCompleted {
		completedAt := now
		r.CompletedAt = &completedAt
	} else {
		r.CompletedAt = nil
	}

	return StatusChanged{
		AccessRequestID: r.ID,
		CompanyID:       r.CompanyID,
		Number:          r.Number,
		Previous:        previous,
		Status:          next,
		At:              now,
	}, nil
}
