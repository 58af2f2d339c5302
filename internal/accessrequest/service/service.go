// Package service orchestrates the access request lifecycle: registration,
// checklist and status changes, notes, dashboard views and the audit trail.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"avgverzoek/internal/accessrequest/metrics"
	"avgverzoek/internal/accessrequest/models"
	id "avgverzoek/pkg/domain"
	dErrors "avgverzoek/pkg/domain-errors"
	audit "avgverzoek/pkg/platform/audit"
	"avgverzoek/pkg/platform/sentinel"
	"avgverzoek/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, r *models.AccessRequest) error
	FindByID(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID) (*models.AccessRequest, error)
	FindByIDForUpdate(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID) (*models.AccessRequest, error)
	ListByCompany(ctx context.Context, companyID id.CompanyID) ([]*models.AccessRequest, error)
	Update(ctx context.Context, r *models.AccessRequest) error
	UpdateText(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID, internalNotes, draftResponse *string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type AuditReader interface {
	ListByAccessRequest(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID) ([]audit.Event, error)
}

// Notifier is told about committed status changes. Delivery failures are
// logged and counted; they never fail the operation.
type Notifier interface {
	NotifyStatusChanged(ctx context.Context, event models.StatusChanged) error
}

// maxNumberAttempts bounds request number draws before giving up.
const maxNumberAttempts = 5

// recentLimit is the number of requests shown under "recent" on the dashboard.
const recentLimit = 5

var tracer = otel.Tracer("avgverzoek/accessrequest")

// Service orchestrates access request operations.
type Service struct {
	store          Store
	tx             AccessRequestTx
	auditPublisher AuditPublisher
	auditReader    AuditReader
	notifier       Notifier
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithAuditPublisher sets the fail-closed compliance publisher.
func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithAuditReader(reader AuditReader) Option {
	return func(s *Service) {
		s.auditReader = reader
	}
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTx replaces the default in-process transaction runner.
func WithTx(tx AccessRequestTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// New constructs a Service. Without WithTx, mutations are serialized per
// access request in process.
func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("access request store is required")
	}
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = NewShardedTx(store, defaultTxTimeout)
	}
	return s, nil
}

// Create registers a new request for the company. A request number collision
// draws a fresh number, up to maxNumberAttempts times.
func (s *Service) Create(ctx context.Context, companyID id.CompanyID, in models.CreateInput) (*models.AccessRequest, error) {
	start := time.Now()
	defer s.observe("create", start)
	ctx, span := tracer.Start(ctx, "accessrequest.Create",
		trace.WithAttributes(attribute.String("company_id", companyID.String())))
	defer span.End()

	now := requestcontext.Now(ctx)
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		r, err := models.NewAccessRequest(id.NewAccessRequestID(), companyID, models.GenerateRequestNumber(now), in, now)
		if err != nil {
			return nil, s.fail(span, translateError(err, "failed to create access request"))
		}

		err = s.tx.RunInTx(withTxKey(ctx, r.ID), func(ctx context.Context, store Store) error {
			if err := store.Create(ctx, r); err != nil {
				return err
			}
			return s.emit(ctx, r, audit.EventAccessRequestCreated, "", "")
		})
		if err == nil {
			span.SetAttributes(attribute.String("access_request_id", r.ID.String()))
			s.logAudit(ctx, string(audit.EventAccessRequestCreated),
				"company_id", companyID.String(),
				"access_request_id", r.ID.String(),
				"request_number", r.Number.String(),
			)
			if s.metrics != nil {
				s.metrics.IncrementCreated()
			}
			return r, nil
		}
		if !errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, s.fail(span, translateError(err, "failed to create access request"))
		}
		if s.metrics != nil {
			s.metrics.IncrementNumberCollision()
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "request number collision",
				"request_number", r.Number.String(),
				"attempt", attempt,
			)
		}
	}
	return nil, s.fail(span, dErrors.New(dErrors.CodeConflict, "could not allocate a unique request number"))
}

// Get returns one request of the company.
func (s *Service) Get(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID) (*models.AccessRequest, error) {
	start := time.Now()
	defer s.observe("get", start)
	ctx, span := tracer.Start(ctx, "accessrequest.Get", trace.WithAttributes(
		attribute.String("company_id", companyID.String()),
		attribute.String("access_request_id", accessRequestID.String()),
	))
	defer span.End()

	r, err := s.store.FindByID(ctx, companyID, accessRequestID)
	if err != nil {
		return nil, s.fail(span, translateError(err, "failed to load access request"))
	}
	return r, nil
}

// List returns the company's requests through view, newest receipt first.
func (s *Service) List(ctx context.Context, companyID id.CompanyID, view models.View) ([]*models.AccessRequest, error) {
	start := time.Now()
	defer s.observe("list", start)
	ctx, span := tracer.Start(ctx, "accessrequest.List", trace.WithAttributes(
		attribute.String("company_id", companyID.String()),
		attribute.String("view", string(view)),
	))
	defer span.End()

	records, err := s.store.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, s.fail(span, translateError(err, "failed to list access requests"))
	}
	return view.Apply(records, requestcontext.Now(ctx)), nil
}

// Dashboard returns the counters, urgent worklist and recent requests.
func (s *Service) Dashboard(ctx context.Context, companyID id.CompanyID) (*models.Dashboard, error) {
	start := time.Now()
	defer s.observe("dashboard", start)
	ctx, span := tracer.Start(ctx, "accessrequest.Dashboard",
		trace.WithAttributes(attribute.String("company_id", companyID.String())))
	defer span.End()

	records, err := s.store.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, s.fail(span, translateError(err, "failed to load dashboard"))
	}
	dashboard := models.BuildDashboard(records, requestcontext.Now(ctx), recentLimit)
	return &dashboard, nil
}

// Catalog returns the systems an operator checks for every request.
func (s *Service) Catalog() []models.System {
	return models.Catalog()
}

// ToggleSystem flips one checklist entry and returns the updated request.
func (s *Service) ToggleSystem(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID, system models.System) (*models.AccessRequest, error) {
	start := time.Now()
	defer s.observe("toggle_system", start)
	ctx, span := tracer.Start(ctx, "accessrequest.ToggleSystem", trace.WithAttributes(
		attribute.String("company_id", companyID.String()),
		attribute.String("access_request_id", accessRequestID.String()),
		attribute.String("system", string(system)),
	))
	defer span.End()

	var (
		updated *models.AccessRequest
		checked bool
	)
	err := s.tx.RunInTx(withTxKey(ctx, accessRequestID), func(ctx context.Context, store Store) error {
		r, err := store.FindByIDForUpdate(ctx, companyID, accessRequestID)
		if err != nil {
			return err
		}
		checked, err = r.ToggleSystem(system)
		if err != nil {
			return err
		}
		if err := store.Update(ctx, r); err != nil {
			return err
		}
		action := audit.EventSystemUnchecked
		if checked {
			action = audit.EventSystemChecked
		}
		if err := s.emit(ctx, r, action, string(system), ""); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, s.fail(span, translateError(err, "failed to toggle system"))
	}

	if s.metrics != nil {
		s.metrics.IncrementToggle(checked)
	}
	s.logAudit(ctx, "system_toggled",
		"company_id", companyID.String(),
		"access_request_id", accessRequestID.String(),
		"system", string(system),
		"checked", checked,
	)
	return updated, nil
}

// SetStatus moves the request to status. Completion stamps CompletedAt,
// any other status clears it. The notifier hears about the change after
// it commits.
func (s *Service) SetStatus(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID, status models.Status) (*models.AccessRequest, error) {
	start := time.Now()
	defer s.observe("set_status", start)
	ctx, span := tracer.Start(ctx, "accessrequest.SetStatus", trace.WithAttributes(
		attribute.String("company_id", companyID.String()),
		attribute.String("access_request_id", accessRequestID.String()),
		attribute.String("status", string(status)),
	))
	defer span.End()

	now := requestcontext.Now(ctx)
	var (
		updated *models.AccessRequest
		changed models.StatusChanged
	)
	err := s.tx.RunInTx(withTxKey(ctx, accessRequestID), func(ctx context.Context, store Store) error {
		r, err := store.FindByIDForUpdate(ctx, companyID, accessRequestID)
		if err != nil {
			return err
		}
		changed, err = r.ApplyStatus(status, now)
		if err != nil {
			return err
		}
		if err := store.Update(ctx, r); err != nil {
			return err
		}
		if err := s.emit(ctx, r, audit.EventStatusChanged, string(status), "previous="+string(changed.Previous)); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, s.fail(span, translateError(err, "failed to change status"))
	}

	if s.metrics != nil {
		s.metrics.IncrementStatusTransition(string(status))
	}
	s.logAudit(ctx, string(audit.EventStatusChanged),
		"company_id", companyID.String(),
		"access_request_id", accessRequestID.String(),
		"previous_status", string(changed.Previous),
		"status", string(status),
	)
	s.notify(ctx, changed)
	return updated, nil
}

// UpdateNotes overwrites internal notes and the draft response. Nil leaves a
// field as is. Concurrent edits are last-writer-wins.
func (s *Service) UpdateNotes(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID, internalNotes, draftResponse *string) (*models.AccessRequest, error) {
	start := time.Now()
	defer s.observe("update_notes", start)
	ctx, span := tracer.Start(ctx, "accessrequest.UpdateNotes", trace.WithAttributes(
		attribute.String("company_id", companyID.String()),
		attribute.String("access_request_id", accessRequestID.String()),
	))
	defer span.End()

	var updated *models.AccessRequest
	err := s.tx.RunInTx(withTxKey(ctx, accessRequestID), func(ctx context.Context, store Store) error {
		if err := store.UpdateText(ctx, companyID, accessRequestID, internalNotes, draftResponse); err != nil {
			return err
		}
		r, err := store.FindByID(ctx, companyID, accessRequestID)
		if err != nil {
			return err
		}
		if err := s.emit(ctx, r, audit.EventNotesUpdated, "", ""); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, s.fail(span, translateError(err, "failed to update notes"))
	}

	s.logAudit(ctx, string(audit.EventNotesUpdated),
		"company_id", companyID.String(),
		"access_request_id", accessRequestID.String(),
	)
	return updated, nil
}

// AuditTrail returns the compliance events recorded for one request, oldest
// first.
func (s *Service) AuditTrail(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID) ([]audit.Event, error) {
	start := time.Now()
	defer s.observe("audit_trail", start)
	ctx, span := tracer.Start(ctx, "accessrequest.AuditTrail", trace.WithAttributes(
		attribute.String("company_id", companyID.String()),
		attribute.String("access_request_id", accessRequestID.String()),
	))
	defer span.End()

	if _, err := s.store.FindByID(ctx, companyID, accessRequestID); err != nil {
		return nil, s.fail(span, translateError(err, "failed to load access request"))
	}
	if s.auditReader == nil {
		return []audit.Event{}, nil
	}
	events, err := s.auditReader.ListByAccessRequest(ctx, companyID, accessRequestID)
	if err != nil {
		return nil, s.fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit trail"))
	}
	return events, nil
}

// translateError maps domain and store errors onto coded errors. Validation
// errors stay matchable by kind through the wrapper.
func translateError(err error, internalMsg string) error {
	var validation *models.ValidationError
	switch {
	case errors.As(err, &validation):
		return dErrors.Wrap(err, dErrors.CodeValidation, validation.Error())
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "access request not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "access request was modified concurrently, reload and retry")
	case dErrors.HasCode(err, dErrors.CodeTimeout):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
	}
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	return err
}

// emit writes a compliance event in the caller's transaction. A failure
// aborts the mutation.
func (s *Service) emit(ctx context.Context, r *models.AccessRequest, action audit.AuditEvent, decision, reason string) error {
	if s.auditPublisher == nil {
		return nil
	}
	return s.auditPublisher.Emit(ctx, audit.Event{
		CompanyID:       r.CompanyID,
		UserID:          requestcontext.UserID(ctx),
		AccessRequestID: r.ID,
		Subject:         r.Number.String(),
		Action:          string(action),
		Decision:        decision,
		Reason:          reason,
	})
}

func (s *Service) notify(ctx context.Context, event models.StatusChanged) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyStatusChanged(ctx, event); err != nil {
		if s.metrics != nil {
			s.metrics.IncrementNotificationFailure()
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "status change notification failed",
				"access_request_id", event.AccessRequestID.String(),
				"status", string(event.Status),
				"error", err,
			)
		}
	}
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

func (s *Service) observe(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(operation, start)
	}
}
