package testutil

import (
	"net/http"
	"time"

	id "avgverzoek/pkg/domain"
	"avgverzoek/pkg/requestcontext"
)

// WithAuth puts the identity the auth middleware would set onto req.
func WithAuth(req *http.Request, userID id.UserID, companyID id.CompanyID) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithCompanyID(ctx, companyID)
	ctx = requestcontext.WithTokenID(ctx, "test-jti")
	return req.WithContext(ctx)
}

// WithTime pins the request-scoped clock.
func WithTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
