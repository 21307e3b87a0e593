package auth

import (
	"net/http"

	"salary-import/internal/backend"
)

// ForwardToken passes the caller's Authorization header on to the payroll
// backend. The service does not check credentials itself; the backend does.
func ForwardToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(backend.WithToken(r.Context(), authHeader)))
	})
}
