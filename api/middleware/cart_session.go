package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/chronovashop/chronova-backend/pkg/logger"
)

const cartSessionHeader = "X-Cart-Session"

// CartSession resolves the caller's cart session id. A first-time caller
// gets a fresh id; it is always echoed back so the storefront can persist
// it for subsequent requests.
func CartSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(cartSessionHeader))
			if sessionID == "" || uuid.Validate(sessionID) != nil {
				sessionID = uuid.NewString()
			}

			w.Header().Set(cartSessionHeader, sessionID)

			ctx := WithCartSession(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
