package middleware

import (
	"net/http"
	"strings"

	"github.com/rjnat/cursorpos-backend/api/responses"
	pkgAuth "github.com/rjnat/cursorpos-backend/pkg/auth"
	"github.com/rjnat/cursorpos-backend/pkg/config"
	pkgerrors "github.com/rjnat/cursorpos-backend/pkg/errors"
	"github.com/rjnat/cursorpos-backend/pkg/logger"
	"github.com/rjnat/cursorpos-backend/pkg/tenant"
)

// Auth validates a bearer token and seeds the request context with the
// tenant and cashier identity. Every core operation downstream scopes its
// reads and writes by the tenant planted here.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := tenant.WithTenantID(r.Context(), claims.TenantID)
			ctx = WithUserID(ctx, claims.UserID)
			if claims.CashierName != "" {
				ctx = WithCashierName(ctx, claims.CashierName)
			}

			if logg != nil {
				ctx = logg.WithTenantID(ctx, claims.TenantID.String())
				ctx = logg.WithUserID(ctx, claims.UserID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
