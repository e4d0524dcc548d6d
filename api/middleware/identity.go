package middleware

import (
	"net/http"
	"strings"

	"github.com/chronovashop/chronova-backend/pkg/auth"
	"github.com/chronovashop/chronova-backend/pkg/config"
	"github.com/chronovashop/chronova-backend/pkg/logger"
)

// OptionalIdentity attaches the authenticated account when a valid bearer
// token is present. Requests without one proceed anonymously; an invalid
// token is treated the same as none, since every route here works for
// guests.
func OptionalIdentity(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			identity, err := auth.ParseAccessToken(cfg, token)
			if err != nil {
				if logg != nil {
					logg.Warn(r.Context(), "ignoring invalid access token")
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			if logg != nil {
				ctx = logg.WithField(ctx, "customer_id", identity.CustomerID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
