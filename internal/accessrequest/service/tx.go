package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	id "avgverzoek/pkg/domain"
	dErrors "avgverzoek/pkg/domain-errors"
	txcontext "avgverzoek/pkg/platform/tx"
)

// AccessRequestTx provides a transactional boundary for read-modify-write
// sequences on one access request. fn receives the context to pass to the
// store and audit publisher so they join the transaction.
type AccessRequestTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}

// numShards spreads in-memory transactions over independent locks keyed by
// access request ID.
const numShards = 128

// defaultTxTimeout bounds a transaction when the caller set no deadline.
const defaultTxTimeout = 5 * time.Second

type shardedTx struct {
	shards  [numShards]sync.Mutex
	store   Store
	timeout time.Duration
}

// NewShardedTx serializes transactions per access request in process. Use it
// with the in-memory store.
func NewShardedTx(store Store, timeout time.Duration) AccessRequestTx {
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}
	return &shardedTx{store: store, timeout: timeout}
}

func (t *shardedTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	shard := t.selectShard(ctx)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx, t.store)
}

// selectShard picks a shard from the access request ID in context, or shard 0.
func (t *shardedTx) selectShard(ctx context.Context) int {
	accessRequestID, ok := ctx.Value(txKeyCtx).(id.AccessRequestID)
	if !ok || accessRequestID.IsNil() {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(accessRequestID.String()))
	return int(h.Sum32() % numShards)
}

type txKey struct{}

var txKeyCtx = txKey{}

func withTxKey(ctx context.Context, accessRequestID id.AccessRequestID) context.Context {
	return context.WithValue(ctx, txKeyCtx, accessRequestID)
}

type postgresTx struct {
	runner *txcontext.Runner
	store  Store
}

// NewPostgresTx runs fn inside a database transaction. The store must read
// its executor from the context (see pkg/platform/tx).
func NewPostgresTx(runner *txcontext.Runner, store Store) AccessRequestTx {
	return &postgresTx{runner: runner, store: store}
}

func (t *postgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error {
	return t.runner.RunInTx(ctx, func(ctx context.Context) error {
		return fn(ctx, t.store)
	})
}
