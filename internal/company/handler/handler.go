package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"avgverzoek/internal/company/models"
	id "avgverzoek/pkg/domain"
	"avgverzoek/pkg/platform/httputil"
	"avgverzoek/pkg/requestcontext"
)

type Service interface {
	Get(ctx context.Context, companyID id.CompanyID) (*models.Company, error)
}

// Handler serves the caller's company profile.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts company endpoints on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/company", h.HandleGetCompany)
}

// CompanyResponse is the JSON shape of a company.
type CompanyResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	KvK           string    `json:"kvk,omitempty"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Email         string    `json:"email,omitempty"`
	Plan          string    `json:"plan"`
	CreatedAt     time.Time `json:"created_at"`
}

func FromCompany(c *models.Company) CompanyResponse {
	return CompanyResponse{
		ID:            c.ID.String(),
		Name:          c.Name,
		KvK:           c.KvK,
		ContactPerson: c.ContactPerson,
		Email:         c.Email,
		Plan:          string(c.Plan),
		CreatedAt:     c.CreatedAt,
	}
}

// HandleGetCompany handles GET /company.
func (h *Handler) HandleGetCompany(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID := requestcontext.CompanyID(ctx)

	c, err := h.service.Get(ctx, companyID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to load company",
			"request_id", requestcontext.RequestID(ctx),
			"company_id", companyID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCompany(c))
}
