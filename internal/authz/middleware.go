package authz

import (
	"log/slog"
	"net/http"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/platform/httpx"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
)

// Middleware wires authentication and policy checks for HTTP handlers.
type Middleware struct {
	Sessions *shared.SessionManager
	Logger   *slog.Logger
}

// Authenticate resolves the bearer token into a principal. Requests without a
// valid session continue unauthenticated; guarded routes reject them later.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := shared.TokenFromRequest(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		principal, err := m.Sessions.Resolve(r.Context(), token)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Debug("session resolve failed", slog.Any("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects unauthenticated requests.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.PrincipalFromContext(r.Context()); !ok {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Require ensures the current principal may perform the action.
func (m Middleware) Require(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, shared.ErrUnauthorized)
				return
			}
			if !Allowed(principal.Role, action) {
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
