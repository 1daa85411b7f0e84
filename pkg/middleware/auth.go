package middleware

import (
	"net/http"
	"strings"

	"github.com/adforge/adforge/pkg/auth"
	"github.com/adforge/adforge/pkg/response"
)

// Auth verifies the bearer token and stores the caller's identity in the
// request context. Rejection happens here, before any handler touches data.
func Auth(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				response.Unauthorized(w)
				return
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUID(r.Context(), claims.UID)))
		})
	}
}

// bearerToken reads the token from the Authorization header, falling back to
// the "token" query parameter for transports that cannot set headers
// (browser WebSocket handshakes).
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
