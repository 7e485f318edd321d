// middleware/auth.go
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/sabbirsolid/asset-management-system-server/policy"
	"github.com/sabbirsolid/asset-management-system-server/store"
	"github.com/sabbirsolid/asset-management-system-server/utils"
)

type contextKey struct{}

var callerKey contextKey

// CallerFrom returns the verified identity attached by Auth; the zero
// Caller (empty email) means no authenticated identity.
func CallerFrom(ctx context.Context) policy.Caller {
	caller, _ := ctx.Value(callerKey).(policy.Caller)
	return caller
}

// Auth validates the bearer token and resolves the user's current role
// and tenant from storage into a typed Caller on the request context.
// It attaches identity only; permission decisions stay with the
// policy checks inside each operation.
func Auth(tokens *utils.TokenIssuer, users store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// WebSocket upgrades carry the token in the query string.
			if r.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				utils.RespondWithError(w, http.StatusUnauthorized, "missing or invalid Authorization header")
				return
			}

			claims, err := tokens.Validate(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			user, err := users.FindByEmail(r.Context(), claims.Email)
			if err != nil {
				log.Printf("auth: user lookup for %s failed: %v", claims.Email, err)
				utils.RespondWithError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if user == nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "user not found")
				return
			}

			caller := policy.Caller{
				Email:  user.Email,
				Name:   user.Name,
				Role:   user.Role,
				Tenant: user.Tenant(),
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, caller)))
		})
	}
}
