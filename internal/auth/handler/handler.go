package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"avgverzoek/internal/auth/models"
	dErrors "avgverzoek/pkg/domain-errors"
	"avgverzoek/pkg/platform/httputil"
	request "avgverzoek/pkg/platform/middleware/request"
)

type Service interface {
	Register(ctx context.Context, in models.Registration) (*models.TokenResult, error)
	Login(ctx context.Context, email, password string) (*models.TokenResult, error)
	Logout(ctx context.Context) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
}

// RegisterProtected mounts endpoints that need a bearer token.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/auth/logout", h.HandleLogout)
}

type RegisterRequest struct {
	CompanyName   string `json:"company_name"`
	KvK           string `json:"kvk"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Password      string `json:"password"`
}

func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.CompanyName) == "" {
		return dErrors.New(dErrors.CodeValidation, "company_name is required")
	}
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	CompanyID   string    `json:"company_id"`
}

func toTokenResponse(r *models.TokenResult) TokenResponse {
	return TokenResponse{
		AccessToken: r.AccessToken,
		TokenType:   r.TokenType,
		ExpiresAt:   r.ExpiresAt,
		UserID:      r.UserID.String(),
		CompanyID:   r.CompanyID.String(),
	}
}

// HandleRegister handles POST /auth/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.DecodeAndPrepare[RegisterRequest](r)
	if err != nil {
		h.fail(ctx, w, "invalid register request", err)
		return
	}

	result, err := h.service.Register(ctx, models.Registration{
		CompanyName:   req.CompanyName,
		KvK:           req.KvK,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Password:      req.Password,
	})
	if err != nil {
		h.fail(ctx, w, "registration failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toTokenResponse(result))
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.DecodeJSON[LoginRequest](r)
	if err != nil {
		h.fail(ctx, w, "invalid login request", err)
		return
	}

	result, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.fail(ctx, w, "login failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTokenResponse(result))
}

// HandleLogout handles POST /auth/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.Logout(ctx); err != nil {
		h.fail(ctx, w, "logout failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"error", err,
		"request_id", request.GetRequestID(ctx),
	)
	httputil.WriteError(w, err)
}
