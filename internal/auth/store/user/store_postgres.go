package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"avgverzoek/internal/auth/models"
	"avgverzoek/internal/platform/postgres"
	id "avgverzoek/pkg/domain"
	txcontext "avgverzoek/pkg/platform/tx"
)

const emailConstraint = "users_email_key"

// PostgresUserStore persists users in PostgreSQL. It joins a transaction
// carried in ctx so registration writes the company and its user atomically.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresUserStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresUserStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, company_id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(user.ID), uuid.UUID(user.CompanyID), models.NormalizeEmail(user.Email), user.PasswordHash, user.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err, emailConstraint) {
			return ErrEmailInUse
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	query := `
		SELECT id, company_id, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`
	return s.findOne(ctx, query, uuid.UUID(userID))
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, company_id, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`
	return s.findOne(ctx, query, models.NormalizeEmail(email))
}

func (s *PostgresUserStore) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		u         models.User
		userID    uuid.UUID
		companyID uuid.UUID
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, arg).
		Scan(&userID, &companyID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.ID = id.UserID(userID)
	u.CompanyID = id.CompanyID(companyID)
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
