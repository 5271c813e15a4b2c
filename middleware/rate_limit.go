package middleware

import (
	"fmt"
	"net"
	"net/http"
	"time"
	"ventro-backend/logger"
	"ventro-backend/response"

	"github.com/go-redis/redis"
)

// RateLimit counts requests per client IP in redis and rejects callers that
// exceed max within the window. Counter keys expire with the window, so a
// quiet client costs nothing.
func RateLimit(client *redis.Client, window time.Duration, max int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			key := fmt.Sprintf("ratelimit-%s", clientIP(r))
			count, err := client.Incr(key).Result()
			if err != nil {
				// limiter outage must not take the API down with it
				logger.Warnf(ctx, "rateLimit: redis unavailable, letting request through: %+v", err)
				next.ServeHTTP(w, r)
				return
			}

			if count == 1 {
				client.Expire(key, window)
			}

			if count > max {
				response.ErrorResponse{
					StatusCode: http.StatusTooManyRequests,
					Success:    false,
					Message:    "Too many requests, please try again later",
					Status:     "RATE_LIMITED",
				}.Send(ctx, w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
