package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"avgverzoek/internal/auth/service"
	"avgverzoek/internal/auth/store/revocation"
	userstore "avgverzoek/internal/auth/store/user"
	companystore "avgverzoek/internal/company/store"
	jwttoken "avgverzoek/internal/jwt_token"
	authmw "avgverzoek/pkg/platform/middleware/auth"
	txcontext "avgverzoek/pkg/platform/tx"
	"avgverzoek/pkg/testutil"
)

func newRouter(t *testing.T) chi.Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwt := jwttoken.NewJWTService("handler-test-signing-key-32-bytes!", "avgverzoek", time.Hour)
	svc, err := service.New(userstore.New(), companystore.NewInMemory(), &txcontext.LockRunner{},
		jwt, revocation.NewInMemoryTRL(), jwt.TTL(),
		service.WithLogger(logger),
		service.WithBcryptCost(bcrypt.MinCost),
	)
	require.NoError(t, err)

	h := New(svc, logger)
	r := chi.NewRouter()
	h.RegisterPublic(r)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(jwt, svc, logger))
		h.RegisterProtected(r)
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	})
	return r
}

func TestAuthFlow(t *testing.T) {
	r := newRouter(t)

	rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/auth/register", RegisterRequest{
		CompanyName: "Bakkerij Jansen",
		Email:       "info@bakkerij.nl",
		Password:    "correct horse",
	}))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	registered := testutil.UnmarshalResponse[TokenResponse](t, rr)
	assert.Equal(t, "Bearer", registered.TokenType)
	assert.NotEmpty(t, registered.CompanyID)

	rr = testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", LoginRequest{
		Email:    "info@bakkerij.nl",
		Password: "correct horse",
	}))
	testutil.AssertStatus(t, rr, http.StatusOK)
	login := testutil.UnmarshalResponse[TokenResponse](t, rr)
	assert.Equal(t, registered.CompanyID, login.CompanyID)

	bearer := func(method, path, token string) *http.Request {
		req := testutil.NewRequest(t, method, path)
		req.Header.Set("Authorization", "Bearer "+token)
		return req
	}

	testutil.AssertStatus(t, testutil.DoRequest(r, bearer(http.MethodGet, "/ping", login.AccessToken)), http.StatusOK)
	testutil.AssertStatus(t, testutil.DoRequest(r, bearer(http.MethodPost, "/auth/logout", login.AccessToken)), http.StatusNoContent)

	rr = testutil.DoRequest(r, bearer(http.MethodGet, "/ping", login.AccessToken))
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")

	// The registration token is a different jti and stays valid.
	testutil.AssertStatus(t, testutil.DoRequest(r, bearer(http.MethodGet, "/ping", registered.AccessToken)), http.StatusOK)
}

func TestRegisterErrors(t *testing.T) {
	r := newRouter(t)
	body := RegisterRequest{CompanyName: "Bakkerij Jansen", Email: "info@bakkerij.nl", Password: "correct horse"}
	testutil.AssertStatus(t, testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/auth/register", body)), http.StatusCreated)

	t.Run("duplicate email", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/auth/register", body))
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
	})

	t.Run("missing company name", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/auth/register",
			RegisterRequest{Email: "piet@bakkerij.nl", Password: "correct horse"}))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	t.Run("short password", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/auth/register",
			RegisterRequest{CompanyName: "X", Email: "piet@bakkerij.nl", Password: "kort"}))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})
}

func TestLoginErrors(t *testing.T) {
	r := newRouter(t)

	t.Run("unknown user", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login",
			LoginRequest{Email: "niemand@example.nl", Password: "whatever1"}))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("malformed body", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login",
			map[string]string{"username": "jan"}))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("logout without token", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodPost, "/auth/logout"))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}
