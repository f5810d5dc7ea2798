package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/fleetwatch/fleetwatch/internal/platform/httpx"
	"github.com/fleetwatch/fleetwatch/internal/shared"
)

// Middleware gates routes behind bearer-token authentication.
type Middleware struct {
	Tokens *TokenManager
	Logger *slog.Logger
}

// RequireAuth extracts and verifies the Authorization header and attaches the
// resolved identity to the request context. The token's claims are trusted;
// no store lookup happens here.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			httpx.Fail(w, http.StatusUnauthorized, "authorization token required")
			return
		}
		identity, err := m.Tokens.Verify(raw)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("token rejected", slog.String("path", r.URL.Path))
			}
			httpx.Fail(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := shared.ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole allows only authenticated identities with the given role.
// It distinguishes 403 (authenticated, wrong role) from the 401 RequireAuth
// emits, so it must run after RequireAuth in the chain.
func (m Middleware) RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := shared.IdentityFromContext(r.Context())
			if !ok {
				httpx.Fail(w, http.StatusUnauthorized, "authorization token required")
				return
			}
			if identity.Role != string(role) {
				httpx.Fail(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return header
}
