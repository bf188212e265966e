package middleware

import "net/http"

// MaxRequestSize caps request body size. Oversized bodies fail inside the
// handler's decode with http.MaxBytesError, which surfaces as a bad request.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
