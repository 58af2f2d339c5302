// Package notify delivers access request events outside the service: status
// changes to Kafka (or the log) and deadline reminders by e-mail.
package notify

import (
	"encoding/json"
	"time"

	"avgverzoek/internal/accessrequest/models"
)

// StatusChangedMessage is the wire format of a status change.
type StatusChangedMessage struct {
	AccessRequestID string    `json:"access_request_id"`
	CompanyID       string    `json:"company_id"`
	RequestNumber   string    `json:"request_number"`
	PreviousStatus  string    `json:"previous_status"`
	Status          string    `json:"status"`
	ChangedAt       time.Time `json:"changed_at"`
}

func newStatusChangedMessage(e models.StatusChanged) StatusChangedMessage {
	return StatusChangedMessage{
		AccessRequestID: e.AccessRequestID.String(),
		CompanyID:       e.CompanyID.String(),
		RequestNumber:   e.Number.String(),
		PreviousStatus:  string(e.Previous),
		Status:          string(e.Status),
		ChangedAt:       e.At.UTC(),
	}
}

func encodeStatusChanged(e models.StatusChanged) ([]byte, error) {
	return json.Marshal(newStatusChangedMessage(e))
}
