package http

import (
	"net/http"

	"golang.org/x/time/rate"

	apierrors "censusqc/internal/errors"
)

// RateLimit caps the request rate across all clients using a token
// bucket. Rejected requests get a 429 without reaching the handlers.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				apierrors.WriteError(w, apierrors.ErrRateLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
