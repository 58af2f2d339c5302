package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"avgverzoek/internal/accessrequest/models"
	"avgverzoek/internal/platform/postgres"
	id "avgverzoek/pkg/domain"
	txcontext "avgverzoek/pkg/platform/tx"
)

const requestNumberConstraint = "access_requests_request_number_key"

// PostgresStore persists access requests in PostgreSQL. Calls join the
// transaction carried in the context, if any.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed access request store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const selectColumns = `
	id, company_id, request_number, subject_name, subject_email, subject_id_partial,
	received_at, deadline, status, checked_systems, internal_notes, draft_response,
	completed_at, created_at, version`

func (s *PostgresStore) Create(ctx context.Context, r *models.AccessRequest) error {
	if r.Version == 0 {
		r.Version = 1
	}
	query := `
		INSERT INTO access_requests (
			id, company_id, request_number, subject_name, subject_email, subject_id_partial,
			received_at, deadline, status, checked_systems, internal_notes, draft_response,
			completed_at, created_at, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(r.ID),
		uuid.UUID(r.CompanyID),
		string(r.Number),
		r.SubjectName,
		r.SubjectEmail,
		r.SubjectIDPartial,
		r.ReceivedAt,
		r.Deadline,
		string(r.Status),
		pq.Array(systemsToStrings(r.CheckedSystems)),
		r.InternalNotes,
		r.DraftResponse,
		r.CompletedAt,
		r.CreatedAt,
		r.Version,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, requestNumberConstraint) {
			return ErrDuplicateNumber
		}
		return fmt.Errorf("insert access request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID) (*models.AccessRequest, error) {
	query := `SELECT` + selectColumns + `
		FROM access_requests
		WHERE id = $1 AND company_id = $2`
	return s.findOne(ctx, query, accessRequestID, companyID)
}

// FindByIDForUpdate locks the row until the surrounding transaction ends.
func (s *PostgresStore) FindByIDForUpdate(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID) (*models.AccessRequest, error) {
	query := `SELECT` + selectColumns + `
		FROM access_requests
		WHERE id = $1 AND company_id = $2
		FOR UPDATE`
	return s.findOne(ctx, query, accessRequestID, companyID)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, accessRequestID id.AccessRequestID, companyID id.CompanyID) (*models.AccessRequest, error) {
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(accessRequestID), uuid.UUID(companyID))
	r, err := scanAccessRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find access request: %w", err)
	}
	return r, nil
}

// ListByCompany returns the company's requests, newest receipt first.
func (s *PostgresStore) ListByCompany(ctx context.Context, companyID id.CompanyID) ([]*models.AccessRequest, error) {
	query := `SELECT` + selectColumns + `
		FROM access_requests
		WHERE company_id = $1
		ORDER BY received_at DESC, created_at DESC, request_number ASC`

	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(companyID))
	if err != nil {
		return nil, fmt.Errorf("query access requests: %w", err)
	}
	defer rows.Close()

	result := make([]*models.AccessRequest, 0)
	for rows.Next() {
		r, err := scanAccessRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan access request: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access requests: %w", err)
	}
	return result, nil
}

// Update writes status, checklist and completion time when the stored
// version still equals r.Version, then bumps r.Version.
func (s *PostgresStore) Update(ctx context.Context, r *models.AccessRequest) error {
	query := `
		UPDATE access_requests
		SET status = $1, checked_systems = $2, completed_at = $3, version = version + 1
		WHERE id = $4 AND company_id = $5 AND version = $6
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		string(r.Status),
		pq.Array(systemsToStrings(r.CheckedSystems)),
		r.CompletedAt,
		uuid.UUID(r.ID),
		uuid.UUID(r.CompanyID),
		r.Version,
	)
	if err != nil {
		return fmt.Errorf("update access request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update access request rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := s.FindByID(ctx, r.CompanyID, r.ID); err != nil {
			return err
		}
		return ErrVersionConflict
	}
	r.Version++
	return nil
}

// UpdateText overwrites notes and draft without a version check. Nil
// arguments keep the stored value.
func (s *PostgresStore) UpdateText(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID, internalNotes, draftResponse *string) error {
	query := `
		UPDATE access_requests
		SET internal_notes = COALESCE($1, internal_notes),
			draft_response = COALESCE($2, draft_response)
		WHERE id = $3 AND company_id = $4
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		nullableString(internalNotes),
		nullableString(draftResponse),
		uuid.UUID(accessRequestID),
		uuid.UUID(companyID),
	)
	if err != nil {
		return fmt.Errorf("update access request text: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update access request text rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccessRequest(row rowScanner) (*models.AccessRequest, error) {
	var (
		r           models.AccessRequest
		rowID       uuid.UUID
		companyID   uuid.UUID
		number      string
		status      string
		systems     []string
		completedAt sql.NullTime
	)
	err := row.Scan(
		&rowID,
		&companyID,
		&number,
		&r.SubjectName,
		&r.SubjectEmail,
		&r.SubjectIDPartial,
		&r.ReceivedAt,
		&r.Deadline,
		&status,
		pq.Array(&systems),
		&r.InternalNotes,
		&r.DraftResponse,
		&completedAt,
		&r.CreatedAt,
		&r.Version,
	)
	if err != nil {
		return nil, err
	}

	r.ID = id.AccessRequestID(rowID)
	r.CompanyID = id.CompanyID(companyID)
	r.Number = models.RequestNumber(number)
	r.Status = models.Status(status)
	r.CheckedSystems = make([]models.System, 0, len(systems))
	for _, sys := range systems {
		r.CheckedSystems = append(r.CheckedSystems, models.System(sys))
	}
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		r.CompletedAt = &t
	}
	r.ReceivedAt = r.ReceivedAt.UTC()
	r.Deadline = r.Deadline.UTC()
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}

func systemsToStrings(systems []models.System) []string {
	out := make([]string, len(systems))
	for i, sys := range systems {
		out[i] = string(sys)
	}
	return out
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
