package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/uteshop/uteshop-backend/api/responses"
	pkgauth "github.com/uteshop/uteshop-backend/pkg/auth"
	"github.com/uteshop/uteshop-backend/pkg/config"
	pkgerrors "github.com/uteshop/uteshop-backend/pkg/errors"
	"github.com/uteshop/uteshop-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with identity.
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

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
			ctx = context.WithValue(ctx, ctxRole, claims.Role)
			if logg != nil {
				ctx = logg.WithUserID(ctx, strconv.FormatInt(claims.UserID, 10))
				ctx = logg.WithField(ctx, "actor_role", string(claims.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
