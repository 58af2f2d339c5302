package handler

import (
	"time"

	"avgverzoek/internal/accessrequest/models"
	audit "avgverzoek/pkg/platform/audit"
)

// AccessRequestResponse carries a request with the presentation fields the
// dashboard renders: countdown, urgency and status colors, checklist.
type AccessRequestResponse struct {
	ID               string               `json:"id"`
	Number           string               `json:"request_number"`
	SubjectName      string               `json:"subject_name"`
	SubjectEmail     string               `json:"subject_email,omitempty"`
	SubjectIDPartial string               `json:"subject_id_partial,omitempty"`
	ReceivedAt       time.Time            `json:"received_at"`
	Deadline         time.Time            `json:"deadline"`
	DaysRemaining    int                  `json:"days_remaining"`
	Countdown        string               `json:"countdown"`
	Urgency          string               `json:"urgency"`
	UrgencyColor     string               `json:"urgency_color"`
	Status           string               `json:"status"`
	StatusLabel      string               `json:"status_label"`
	StatusColor      string               `json:"status_color"`
	CheckedSystems   []string             `json:"checked_systems"`
	Checklist        []ChecklistItem      `json:"checklist"`
	Completeness     CompletenessResponse `json:"completeness"`
	InternalNotes    string               `json:"internal_notes"`
	DraftResponse    string               `json:"draft_response"`
	CompletedAt      *time.Time           `json:"completed_at,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
}

type ChecklistItem struct {
	System  string `json:"system"`
	Checked bool   `json:"checked"`
}

type CompletenessResponse struct {
	Checked int `json:"checked"`
	Total   int `json:"total"`
}

// FromAccessRequest renders r as seen at now.
func FromAccessRequest(r *models.AccessRequest, now time.Time) AccessRequestResponse {
	days := r.DaysRemaining(now)
	urgency := models.UrgencyFor(days)
	checked, total := r.Completeness()

	checkedSystems := make([]string, 0, len(r.CheckedSystems))
	for _, sys := range r.CheckedSystems {
		checkedSystems = append(checkedSystems, string(sys))
	}
	checklist := make([]ChecklistItem, 0, models.CatalogSize())
	for _, sys := range models.Catalog() {
		checklist = append(checklist, ChecklistItem{System: string(sys), Checked: r.HasChecked(sys)})
	}

	return AccessRequestResponse{
		ID:               r.ID.String(),
		Number:           r.Number.String(),
		SubjectName:      r.SubjectName,
		SubjectEmail:     r.SubjectEmail,
		SubjectIDPartial: r.SubjectIDPartial,
		ReceivedAt:       r.ReceivedAt,
		Deadline:         r.Deadline,
		DaysRemaining:    days,
		Countdown:        models.CountdownLabel(days),
		Urgency:          string(urgency),
		UrgencyColor:     urgency.Color(),
		Status:           string(r.Status),
		StatusLabel:      r.Status.Label(),
		StatusColor:      r.Status.Color(),
		CheckedSystems:   checkedSystems,
		Checklist:        checklist,
		Completeness:     CompletenessResponse{Checked: checked, Total: total},
		InternalNotes:    r.InternalNotes,
		DraftResponse:    r.DraftResponse,
		CompletedAt:      r.CompletedAt,
		CreatedAt:        r.CreatedAt,
	}
}

func fromAccessRequests(records []*models.AccessRequest, now time.Time) []AccessRequestResponse {
	out := make([]AccessRequestResponse, 0, len(records))
	for _, r := range records {
		out = append(out, FromAccessRequest(r, now))
	}
	return out
}

// ListResponse is the HTTP response for GET /access-requests.
type ListResponse struct {
	View           string                  `json:"view"`
	Count          int                     `json:"count"`
	AccessRequests []AccessRequestResponse `json:"access_requests"`
}

// DashboardResponse is the HTTP response for GET /dashboard.
type DashboardResponse struct {
	Summary SummaryResponse         `json:"summary"`
	Urgent  []AccessRequestResponse `json:"urgent"`
	Recent  []AccessRequestResponse `json:"recent"`
}

type SummaryResponse struct {
	Total     int `json:"total"`
	Open      int `json:"open"`
	Urgent    int `json:"urgent"`
	Completed int `json:"completed"`
}

func FromDashboard(d *models.Dashboard, now time.Time) DashboardResponse {
	return DashboardResponse{
		Summary: SummaryResponse{
			Total:     d.Summary.Total,
			Open:      d.Summary.Open,
			Urgent:    d.Summary.Urgent,
			Completed: d.Summary.Completed,
		},
		Urgent: fromAccessRequests(d.Urgent, now),
		Recent: fromAccessRequests(d.Recent, now),
	}
}

// CatalogResponse is the HTTP response for GET /catalog.
type CatalogResponse struct {
	Systems  []string         `json:"systems"`
	Statuses []StatusResponse `json:"statuses"`
}

type StatusResponse struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Color  string `json:"color"`
}

func newCatalogResponse(systems []models.System) CatalogResponse {
	resp := CatalogResponse{
		Systems:  make([]string, 0, len(systems)),
		Statuses: make([]StatusResponse, 0, len(models.AllStatuses())),
	}
	for _, sys := range systems {
		resp.Systems = append(resp.Systems, string(sys))
	}
	for _, st := range models.AllStatuses() {
		resp.Statuses = append(resp.Statuses, StatusResponse{Status: string(st), Label: st.Label(), Color: st.Color()})
	}
	return resp
}

// AuditEventResponse is one entry of GET /access-requests/{id}/audit.
type AuditEventResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type AuditTrailResponse struct {
	Events []AuditEventResponse `json:"events"`
}

func fromAuditEvents(events []audit.Event) AuditTrailResponse {
	out := AuditTrailResponse{Events: make([]AuditEventResponse, 0, len(events))}
	for _, e := range events {
		item := AuditEventResponse{
			ID:        e.ID.String(),
			Action:    e.Action,
			Decision:  e.Decision,
			Reason:    e.Reason,
			RequestID: e.RequestID,
			Timestamp: e.Timestamp,
		}
		if !e.UserID.IsNil() {
			item.UserID = e.UserID.String()
		}
		out.Events = append(out.Events, item)
	}
	return out
}
