package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"latch/internal/models"
)

type ctxKey string

const principalKey ctxKey = "principal"

// RequireAuth: Authorization: Bearer <token> → Verifier → Principal в контексте.
// Пустой/отсутствующий токен отбрасывается до обращения к провайдеру.
func RequireAuth(v Verifier) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				models.WriteError(w, http.StatusInternalServerError, "missing_credentials")
				return
			}
			const p = "Bearer "
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, p) || strings.TrimSpace(strings.TrimPrefix(auth, p)) == "" {
				models.WriteError(w, http.StatusUnauthorized, "missing_token")
				return
			}
			principal, err := v.Verify(r.Context(), strings.TrimSpace(strings.TrimPrefix(auth, p)))
			if err != nil {
				models.WriteError(w, http.StatusUnauthorized, "invalid_session")
				return
			}
			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func FromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey).(*Principal); ok {
		return p
	}
	return nil
}
