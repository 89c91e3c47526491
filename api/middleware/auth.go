package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/propdesk/fundedpay/api/responses"
	"github.com/propdesk/fundedpay/internal/payments"
	pkgAuth "github.com/propdesk/fundedpay/pkg/auth"
	"github.com/propdesk/fundedpay/pkg/config"
	pkgerrors "github.com/propdesk/fundedpay/pkg/errors"
	"github.com/propdesk/fundedpay/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with its subject.
func Auth(cfg config.AuthConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			userID := claims.UserID()
			ctx := WithUserID(r.Context(), userID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Identity exposes the authenticated user to the payment session layer.
func Identity() payments.IdentityProvider {
	return payments.IdentityFunc(func(ctx context.Context) (string, bool) {
		userID := UserIDFromContext(ctx)
		return userID, userID != ""
	})
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
