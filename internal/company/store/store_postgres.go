package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"avgverzoek/internal/company/models"
	id "avgverzoek/pkg/domain"
	txcontext "avgverzoek/pkg/platform/tx"
)

// PostgresStore persists companies in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

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

func (s *PostgresStore) Create(ctx context.Context, c *models.Company) error {
	query := `
		INSERT INTO companies (id, name, kvk, contact_person, email, plan, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(c.ID), c.Name, c.KvK, c.ContactPerson, c.Email, string(c.Plan), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, companyID id.CompanyID) (*models.Company, error) {
	query := `
		SELECT id, name, kvk, contact_person, email, plan, created_at
		FROM companies
		WHERE id = $1
	`
	c, err := scanCompany(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(companyID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find company: %w", err)
	}
	return c, nil
}

// ListAll returns every company ordered by name.
func (s *PostgresStore) ListAll(ctx context.Context) ([]*models.Company, error) {
	query := `
		SELECT id, name, kvk, contact_person, email, plan, created_at
		FROM companies
		ORDER BY name, id
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (*models.Company, error) {
	var (
		c         models.Company
		companyID uuid.UUID
		plan      string
	)
	if err := row.Scan(&companyID, &c.Name, &c.KvK, &c.ContactPerson, &c.Email, &plan, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.ID = id.CompanyID(companyID)
	c.Plan = models.Plan(plan)
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}
