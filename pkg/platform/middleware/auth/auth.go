package auth

import (
	"log/slog"
	"net/http"
	"strings"

	id "gesher/pkg/domain"
	dErrors "gesher/pkg/domain-errors"
	"gesher/pkg/platform/httputil"
	"gesher/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns the phone it was
// issued for.
type TokenValidator interface {
	Validate(tokenString string) (id.Phone, error)
}

// RequireSession rejects requests without a valid bearer token and stores
// the authenticated phone in the request context.
func RequireSession(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing bearer token",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or malformed Authorization header"))
				return
			}

			phone, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithPhone(ctx, phone)))
		})
	}
}
