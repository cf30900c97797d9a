package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"classquiz/internal/app"
	"classquiz/internal/auth"
	"classquiz/internal/domain"
)

type contextKey string

const principalKey contextKey = "principal"

// Authenticator verifies bearer credentials and resolves them to stored
// profiles before handlers run.
type Authenticator struct {
	verifier auth.Verifier
	users    *app.UserService
	log      *logrus.Logger
}

func NewAuthenticator(verifier auth.Verifier, users *app.UserService, log *logrus.Logger) *Authenticator {
	return &Authenticator{verifier: verifier, users: users, log: log}
}

// Middleware authenticates the request and attaches the principal to the
// context. A verified identity without a profile is told to register.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := a.identify(w, r)
		if !ok {
			return
		}
		principal, err := a.users.Profile(r.Context(), identity.UID)
		if err != nil {
			if err == domain.ErrUserNotFound {
				writeError(w, http.StatusNotFound, kindNotFound, "user not registered; complete registration first")
				return
			}
			writeDomainError(w, a.log, err)
			return
		}
		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// identify verifies the Authorization header without requiring a profile.
// Used directly by the registration endpoint.
func (a *Authenticator) identify(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		writeError(w, http.StatusUnauthorized, kindUnauthorized, "no token provided")
		return auth.Identity{}, false
	}
	identity, err := a.verifier.Verify(r.Context(), strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		writeError(w, http.StatusUnauthorized, kindUnauthorized, "invalid or expired token")
		return auth.Identity{}, false
	}
	return identity, true
}

// RequireRole gates a route on the principal's role.
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok || principal.Role != role {
				writeError(w, http.StatusForbidden, kindForbidden, string(role)+" role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFromContext returns the authenticated user set by Middleware.
func PrincipalFromContext(ctx context.Context) (domain.User, bool) {
	principal, ok := ctx.Value(principalKey).(domain.User)
	return principal, ok
}
