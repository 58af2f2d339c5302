package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"avgverzoek/internal/accessrequest/models"
	id "avgverzoek/pkg/domain"
	dErrors "avgverzoek/pkg/domain-errors"
	audit "avgverzoek/pkg/platform/audit"
	"avgverzoek/pkg/platform/httputil"
	"avgverzoek/pkg/requestcontext"
)

// Service defines the access request operations the handler needs.
type Service interface {
	Create(ctx context.Context, companyID id.CompanyID, in models.CreateInput) (*models.AccessRequest, error)
	Get(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID) (*models.AccessRequest, error)
	List(ctx context.Context, companyID id.CompanyID, view models.View) ([]*models.AccessRequest, error)
	Dashboard(ctx context.Context, companyID id.CompanyID) (*models.Dashboard, error)
	Catalog() []models.System
	ToggleSystem(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID, system models.System) (*models.AccessRequest, error)
	SetStatus(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID, status models.Status) (*models.AccessRequest, error)
	UpdateNotes(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID, internalNotes, draftResponse *string) (*models.AccessRequest, error)
	AuditTrail(ctx context.Context, companyID id.CompanyID, accessRequestID id.AccessRequestID) ([]audit.Event, error)
}

// Handler wires access request endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the endpoints on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/catalog", h.HandleCatalog)
	r.Get("/dashboard", h.HandleDashboard)
	r.Route("/access-requests", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/{id}", h.HandleGet)
		r.Post("/{id}/systems/toggle", h.HandleToggleSystem)
		r.Put("/{id}/status", h.HandleSetStatus)
		r.Patch("/{id}/notes", h.HandleUpdateNotes)
		r.Get("/{id}/audit", h.HandleAuditTrail)
	})
}

// HandleCatalog handles GET /catalog.
func (h *Handler) HandleCatalog(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, newCatalogResponse(h.service.Catalog()))
}

// HandleDashboard handles GET /dashboard.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dashboard, err := h.service.Dashboard(ctx, requestcontext.CompanyID(ctx))
	if err != nil {
		h.fail(ctx, w, "failed to load dashboard", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDashboard(dashboard, requestcontext.Now(ctx)))
}

// HandleCreate handles POST /access-requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.DecodeAndPrepare[CreateRequest](r)
	if err != nil {
		h.fail(ctx, w, "invalid create request", err)
		return
	}

	created, err := h.service.Create(ctx, requestcontext.CompanyID(ctx), req.ToInput())
	if err != nil {
		h.fail(ctx, w, "failed to create access request", err)
		return
	}

	h.logger.InfoContext(ctx, "access request created",
		"request_id", requestcontext.RequestID(ctx),
		"access_request_id", created.ID.String(),
		"request_number", created.Number.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromAccessRequest(created, requestcontext.Now(ctx)))
}

// HandleList handles GET /access-requests?view=all|open|urgent|completed.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, ok := models.ParseView(r.URL.Query().Get("view"))
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "view must be one of all, open, urgent, completed"))
		return
	}

	records, err := h.service.List(ctx, requestcontext.CompanyID(ctx), view)
	if err != nil {
		h.fail(ctx, w, "failed to list access requests", err)
		return
	}
	items := fromAccessRequests(records, requestcontext.Now(ctx))
	httputil.WriteJSON(w, http.StatusOK, ListResponse{View: string(view), Count: len(items), AccessRequests: items})
}

// HandleGet handles GET /access-requests/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accessRequestID, err := id.ParseAccessRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	found, err := h.service.Get(ctx, requestcontext.CompanyID(ctx), accessRequestID)
	if err != nil {
		h.fail(ctx, w, "failed to load access request", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAccessRequest(found, requestcontext.Now(ctx)))
}

// HandleToggleSystem handles POST /access-requests/{id}/systems/toggle.
func (h *Handler) HandleToggleSystem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accessRequestID, err := id.ParseAccessRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeAndPrepare[ToggleSystemRequest](r)
	if err != nil {
		h.fail(ctx, w, "invalid toggle request", err)
		return
	}

	updated, err := h.service.ToggleSystem(ctx, requestcontext.CompanyID(ctx), accessRequestID, models.System(req.System))
	if err != nil {
		h.fail(ctx, w, "failed to toggle system", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAccessRequest(updated, requestcontext.Now(ctx)))
}

// HandleSetStatus handles PUT /access-requests/{id}/status.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accessRequestID, err := id.ParseAccessRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeAndPrepare[SetStatusRequest](r)
	if err != nil {
		h.fail(ctx, w, "invalid status request", err)
		return
	}

	updated, err := h.service.SetStatus(ctx, requestcontext.CompanyID(ctx), accessRequestID, models.Status(req.Status))
	if err != nil {
		h.fail(ctx, w, "failed to change status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAccessRequest(updated, requestcontext.Now(ctx)))
}

// HandleUpdateNotes handles PATCH /access-requests/{id}/notes.
func (h *Handler) HandleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accessRequestID, err := id.ParseAccessRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeAndPrepare[UpdateNotesRequest](r)
	if err != nil {
		h.fail(ctx, w, "invalid notes request", err)
		return
	}

	updated, err := h.service.UpdateNotes(ctx, requestcontext.CompanyID(ctx), accessRequestID, req.InternalNotes, req.DraftResponse)
	if err != nil {
		h.fail(ctx, w, "failed to update notes", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAccessRequest(updated, requestcontext.Now(ctx)))
}

// HandleAuditTrail handles GET /access-requests/{id}/audit.
func (h *Handler) HandleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accessRequestID, err := id.ParseAccessRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.service.AuditTrail(ctx, requestcontext.CompanyID(ctx), accessRequestID)
	if err != nil {
		h.fail(ctx, w, "failed to load audit trail", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromAuditEvents(events))
}

// fail logs at warn for client errors and error for internal ones, then
// writes the error envelope.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"company_id", requestcontext.CompanyID(ctx).String(),
		"error", err,
	)
	httputil.WriteError(w, err)
}
