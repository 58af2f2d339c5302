// Package tx carries a *sql.Tx through context so stores that share a
// transaction (access requests and their audit events) write atomically.
package tx

import (
	"context"
	"database/sql"
	"sync"
	"time"

	dErrors "avgverzoek/pkg/domain-errors"
)

type ctxKey struct{}

var txKey = ctxKey{}

// DefaultTimeout bounds a transaction when the caller set no deadline.
const DefaultTimeout = 5 * time.Second

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Runner opens a transaction, exposes it through the context passed to fn,
// and commits when fn returns nil.
type Runner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewRunner(db *sql.DB, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{db: db, timeout: timeout}
}

func (r *Runner) Run(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(WithTx(ctx, sqlTx), sqlTx); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// RunInTx is Run for callers that only need the transaction-carrying context.
func (r *Runner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.Run(ctx, func(ctx context.Context, _ *sql.Tx) error {
		return fn(ctx)
	})
}

// LockRunner is the in-memory counterpart of Runner: fn runs under a single
// mutex. Nothing is rolled back when fn fails.
type LockRunner struct {
	mu sync.Mutex
}

func (l *LockRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(ctx)
}
