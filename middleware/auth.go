package middleware

import (
	"net/http"
	"strings"
	"ventro-backend/auth"
	"ventro-backend/logger"
	"ventro-backend/response"
)

const bearerPrefix = "Bearer "

// Authenticate verifies the bearer token issued by the auth service and
// stores the identity on the request context. Handlers downstream trust it.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				response.Unauthorized().Send(ctx, w)
				return
			}

			claims, err := auth.Verify(secret, strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				logger.Infof(ctx, "authenticate: rejected token: %+v", err)
				response.Unauthorized().Send(ctx, w)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.SetIdentity(ctx, claims)))
		})
	}
}
