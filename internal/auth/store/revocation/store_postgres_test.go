package revocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresTRL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	trl := NewPostgresTRL(db, WithPostgresClock(func() time.Time { return now }))
	ctx := context.Background()

	t.Run("revoke upserts the expiry", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO token_revocations").
			WithArgs("jti-1", now.Add(time.Hour)).
			WillReturnResult(sqlmock.NewResult(1, 1))
		require.NoError(t, trl.RevokeToken(ctx, "jti-1", time.Hour))
	})

	t.Run("live entry is revoked", func(t *testing.T) {
		mock.ExpectQuery("SELECT expires_at FROM token_revocations").
			WithArgs("jti-1").
			WillReturnRows(sqlmock.NewRows([]string{"expires_at"}).AddRow(now.Add(time.Minute)))
		revoked, err := trl.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("lapsed entry is not", func(t *testing.T) {
		mock.ExpectQuery("SELECT expires_at FROM token_revocations").
			WillReturnRows(sqlmock.NewRows([]string{"expires_at"}).AddRow(now.Add(-time.Minute)))
		revoked, err := trl.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("unknown jti", func(t *testing.T) {
		mock.ExpectQuery("SELECT expires_at FROM token_revocations").
			WillReturnRows(sqlmock.NewRows([]string{"expires_at"}))
		revoked, err := trl.IsRevoked(ctx, "jti-9")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("driver errors surface", func(t *testing.T) {
		mock.ExpectQuery("SELECT expires_at FROM token_revocations").
			WillReturnError(errors.New("connection reset"))
		_, err := trl.IsRevoked(ctx, "jti-1")
		assert.Error(t, err)
	})

	t.Run("purge removes lapsed rows", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM token_revocations").
			WithArgs(now).
			WillReturnResult(sqlmock.NewResult(0, 3))
		n, err := trl.PurgeExpired(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
