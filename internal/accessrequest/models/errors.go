package models

import "fmt"

// ValidationKind names the rule a rejected input broke.
type ValidationKind string

const (
	KindMissingSubjectName  ValidationKind = "missing_subject_name"
	KindMissingReceivedDate ValidationKind = "missing_received_date"
	KindUnknownSystem       ValidationKind = "unknown_system"
	KindUnknownStatus       ValidationKind = "unknown_status"
)

// ValidationError rejects an operation before anything is mutated.
// errors.Is matches on Kind alone, so callers can test against the Err*
// values regardless of the offending input.
type ValidationError struct {
	Kind  ValidationKind
	Value string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindMissingSubjectName:
		return "subject name is required"
	case KindMissingReceivedDate:
		return "received date is required"
	case KindUnknownSystem:
		return fmt.Sprintf("unknown system %q", e.Value)
	case KindUnknownStatus:
		return fmt.Sprintf("unknown status %q", e.Value)
	default:
		return string(e.Kind)
	}
}

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

var (
	ErrMissingSubjectName  = &ValidationError{Kind: KindMissingSubjectName}
	ErrMissingReceivedDate = &ValidationError{Kind: KindMissingReceivedDate}
	ErrUnknownSystem       = &ValidationError{Kind: KindUnknownSystem}
	ErrUnknownStatus       = &ValidationError{Kind: KindUnknownStatus}
)
