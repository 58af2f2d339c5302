// Package requesttime pins one UTC "now" per HTTP request, so deadlines,
// audit timestamps and CompletedAt all agree within a request.
package requesttime

import (
	"net/http"
	"time"

	"avgverzoek/pkg/requestcontext"
)

// Middleware stores the request's arrival time in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
