package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/smartcooking/api/internal/domain/user"
	"github.com/smartcooking/api/internal/infrastructure/security"
	"github.com/smartcooking/api/internal/ports/outbound"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated user attached to a request.
type Principal struct {
	User  *user.User
	Token string
}

// CurrentUser extracts the authenticated user from the request
// context. ok is false for anonymous requests.
func CurrentUser(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

// Authenticate resolves the bearer token into a user and attaches it
// to the request context. It never rejects a request: on a missing,
// invalid, expired or revoked token the request simply continues
// anonymously, and route-level authorization decides access. Token
// resolution runs on every route, including ones the authorization
// gate bypasses, so handlers like /api/auth/me and /api/test/echo can
// still see who is calling.
func Authenticate(tokens *security.TokenService, users outbound.UserRepository, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.ParseClaims(token)
			if err != nil {
				logger.Debug("token rejected",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			if revoked, err := tokens.IsRevoked(r.Context(), token); err != nil || revoked {
				next.ServeHTTP(w, r)
				return
			}

			// The user record is re-read on every request, so role
			// changes and deactivation take effect before the token
			// expires.
			u, err := users.FindByEmail(r.Context(), claims.Email)
			if err != nil || !u.IsActive() {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, &Principal{User: u, Token: token})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize enforces the route policy table: 401 for routes that
// need a session, 403 when the role is insufficient.
func Authorize(policy *security.Policy) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if policy.IsBypassed(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			principal, authenticated := CurrentUser(r.Context())
			var role user.Role
			if authenticated {
				role = principal.User.Role()
			}

			switch policy.Evaluate(r.Method, r.URL.Path, authenticated, role) {
			case security.DecisionAllow:
				next.ServeHTTP(w, r)
			case security.DecisionAuthenticate:
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"success":false,"message":"Authentication required"}`))
			case security.DecisionForbid:
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"success":false,"message":"Insufficient permissions"}`))
			}
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
