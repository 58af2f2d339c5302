// Package compliance provides a fail-closed audit publisher for regulatory events.
//
// Publisher writes compliance events synchronously; the caller blocks until the
// write succeeds. If the write fails an error is returned and the calling
// operation must fail. Run it inside the mutation's transaction so the event
// and the state change commit together.
package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	audit "avgverzoek/pkg/platform/audit"
	"avgverzoek/pkg/requestcontext"
)

// Publisher emits compliance events with fail-closed semantics.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// New creates a compliance publisher.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: store,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit synchronously writes a compliance event to the audit store.
// Returns error if persistence fails; the caller must fail its operation.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	start := time.Now()

	if event.CompanyID.IsNil() {
		return fmt.Errorf("compliance event requires CompanyID")
	}
	if event.Action == "" {
		return fmt.Errorf("compliance event requires Action")
	}
	if cat := audit.AuditEvent(event.Action).Category(); cat != audit.CategoryCompliance {
		return fmt.Errorf("action %q is not a compliance event", event.Action)
	}

	event.Category = audit.CategoryCompliance
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if err := p.store.Append(ctx, event); err != nil {
		if p.metrics != nil {
			p.metrics.IncPersistFailures()
		}
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "CRITICAL: compliance audit failed",
				"action", event.Action,
				"company_id", event.CompanyID,
				"access_request_id", event.AccessRequestID,
				"error", err,
			)
		}
		return fmt.Errorf("compliance audit persistence failed: %w", err)
	}

	if p.metrics != nil {
		p.metrics.ObservePersistDuration(time.Since(start).Seconds())
		p.metrics.IncEventsEmitted()
	}

	return nil
}
