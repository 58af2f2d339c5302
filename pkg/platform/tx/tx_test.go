package tx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "avgverzoek/pkg/domain-errors"
)

func TestRunner_CommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE access_requests").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = NewRunner(db, 0).Run(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
		carried, ok := From(ctx)
		require.True(t, ok)
		assert.Same(t, tx, carried)
		_, err := carried.ExecContext(ctx, "UPDATE access_requests SET version = version + 1")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("audit down")
	err = NewRunner(db, 0).RunInTx(context.Background(), func(context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_CancelledContext(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = NewRunner(db, 0).RunInTx(ctx, func(context.Context) error { return nil })
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
}

func TestLockRunner(t *testing.T) {
	var l LockRunner
	calls := 0
	require.NoError(t, l.RunInTx(context.Background(), func(context.Context) error {
		calls++
		return nil
	}))
	assert.Equal(t, 1, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.RunInTx(ctx, func(context.Context) error { return nil })
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
}

func TestWithTxNil(t *testing.T) {
	ctx := WithTx(context.Background(), nil)
	_, ok := From(ctx)
	assert.False(t, ok)
}
