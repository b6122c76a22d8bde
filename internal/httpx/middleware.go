package httpx

import (
	"errors"
	"net/http"

	"github.com/battolapablo/marketgo/internal/auth"
)

// RequireAuth verifies the bearer credential and then checks the policy for
// the named operation, in that order. On success the identity rides on the
// request context for downstream handlers.
func RequireAuth(v *auth.Verifier, policy auth.Policy, operation string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := v.Verify(r.Header.Get("Authorization"))
			if err != nil {
				msg := "expired or invalid token"
				if errors.Is(err, auth.ErrMissingToken) {
					msg = "token not found"
				}
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": msg})
				return
			}
			if err := policy.Authorize(id, operation); err != nil {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied"})
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}
