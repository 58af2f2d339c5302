package postgres

import (
	"context"
	"database/sql"
	"fmt"

	id "avgverzoek/pkg/domain"
	audit "avgverzoek/pkg/platform/audit"
	txcontext "avgverzoek/pkg/platform/tx"

	"github.com/google/uuid"
)

// Store implements audit.Store on the audit_events table. Appends join the
// caller's transaction when one is carried in the context.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func nullableUUID(u uuid.UUID) *uuid.UUID {
	if u == uuid.Nil {
		return nil
	}
	return &u
}

// Append inserts an audit event. Category is always derived from the action.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID.IsNil() {
		event.ID = id.NewEventID()
	}
	category := audit.AuditEvent(event.Action).Category()

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, company_id, user_id, access_request_id,
			subject, action, decision, reason, request_id, client_ip
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(event.ID),
		string(category),
		event.Timestamp,
		nullableUUID(uuid.UUID(event.CompanyID)),
		nullableUUID(uuid.UUID(event.UserID)),
		nullableUUID(uuid.UUID(event.AccessRequestID)),
		event.Subject,
		event.Action,
		event.Decision,
		event.Reason,
		event.RequestID,
		event.IP,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByAccessRequest returns the request's events oldest first.
func (s *Store) ListByAccessRequest(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID) ([]audit.Event, error) {
	query := `
		SELECT id, category, timestamp, company_id, user_id, access_request_id,
			   subject, action, decision, reason, request_id, client_ip
		FROM audit_events
		WHERE company_id = $1 AND access_request_id = $2
		ORDER BY timestamp ASC
	`

	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(companyID), uuid.UUID(accessRequestID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

// scanEvents scans multiple rows into audit.Event slice.
func (s *Store) scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	events := []audit.Event{}

	for rows.Next() {
		var (
			category                       string
			event                          audit.Event
			eventID                        uuid.UUID
			companyID, userID, accessReqID *uuid.UUID
		)

		err := rows.Scan(
			&eventID,
			&category,
			&event.Timestamp,
			&companyID,
			&userID,
			&accessReqID,
			&event.Subject,
			&event.Action,
			&event.Decision,
			&event.Reason,
			&event.RequestID,
			&event.IP,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		event.ID = id.EventID(eventID)
		event.Category = audit.EventCategory(category)
		if companyID != nil {
			event.CompanyID = id.CompanyID(*companyID)
		}
		if userID != nil {
			event.UserID = id.UserID(*userID)
		}
		if accessReqID != nil {
			event.AccessRequestID = id.AccessRequestID(*accessReqID)
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}

	return events, nil
}
