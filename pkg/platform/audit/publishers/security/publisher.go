// Package security buffers security audit events (failed logins, token
// revocations) and flushes them to the audit store in the background.
// Emit never blocks the request path; under sustained store failure the
// oldest events are dropped.
package security

import (
	"context"
	"log/slog"
	"time"

	audit "avgverzoek/pkg/platform/audit"
	"avgverzoek/pkg/requestcontext"
)

const (
	defaultFlushInterval = time.Second
	defaultBatchSize     = 100
)

type Publisher struct {
	store         audit.Store
	buffer        *RingBuffer
	logger        *slog.Logger
	flushInterval time.Duration
	batchSize     int
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

func WithFlushInterval(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.flushInterval = d
		}
	}
}

func WithBufferSize(n int) Option {
	return func(p *Publisher) { p.buffer = NewRingBuffer(n) }
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:         store,
		buffer:        NewRingBuffer(0),
		logger:        slog.Default(),
		flushInterval: defaultFlushInterval,
		batchSize:     defaultBatchSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit queues a security event.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) {
	event.Category = audit.CategorySecurity
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if p.buffer.Enqueue(event) {
		p.logger.WarnContext(ctx, "security audit buffer full, dropped oldest event")
	}
}

// Run flushes the buffer until ctx is cancelled, then drains what is left.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Drain with a fresh context; the parent is already cancelled.
			p.Flush(context.WithoutCancel(ctx))
			return nil
		case <-ticker.C:
			p.Flush(ctx)
		}
	}
}

// Flush writes every buffered event. Events that fail to persist are logged
// and discarded.
func (p *Publisher) Flush(ctx context.Context) {
	for {
		batch := p.buffer.DequeueBatch(p.batchSize)
		if len(batch) == 0 {
			return
		}
		for _, event := range batch {
			if err := p.store.Append(ctx, event); err != nil {
				p.logger.ErrorContext(ctx, "failed to persist security audit event",
					"action", event.Action,
					"error", err,
				)
			}
		}
	}
}

// Pending returns the number of events waiting to be flushed.
func (p *Publisher) Pending() int {
	return p.buffer.Len()
}
