package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	apperror "gohub/internal/errors"
	"gohub/internal/pkg/cache"
)

// RateLimiter applies a fixed window counter per client IP, backed by Redis.
// The counter key expires with the window, so there is no cleanup to run.
func RateLimiter(client cache.Client, limit int, duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, _ := net.SplitHostPort(r.RemoteAddr)
			key := "rate-limit:" + ip
			ctx := context.Background()

			count, err := client.GetInt(ctx, key)
			if err == cache.ErrCacheMiss {
				client.Set(ctx, key, 1, duration)
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-1))
				next.ServeHTTP(w, r)
				return
			} else if err != nil {
				WriteError(w, apperror.NewInternalError("Falha ao consultar o limitador de requisições.", err))
				return
			}

			if count >= limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"code":429,"category":"RATE_LIMITED","message":"Limite de requisições excedido. Tente novamente em instantes."}`))
				return
			}

			client.Incr(ctx, key)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-count-1))
			next.ServeHTTP(w, r)
		})
	}
}
