package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dukerupert/nahl/internal/cookie"
	"github.com/dukerupert/nahl/internal/domain"
)

// Session ensures every visitor carries a session id. A missing or malformed
// cookie is replaced with a fresh UUID. The id keys the visitor's cart.
func Session(cfg *cookie.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := cfg.Get(r)
			if _, err := uuid.Parse(session); err != nil {
				session = uuid.New().String()
				cfg.Set(w, session)
			}

			ctx := domain.NewContextWithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
