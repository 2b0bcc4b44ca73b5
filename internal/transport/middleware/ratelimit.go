package middleware

import (
	"net/http"
	"strconv"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/transport"
	"github.com/frahmantamala/task-management/pkg/logger"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// NewIPLimiter builds an in-memory limiter from a formatted rate such as "100-M".
func NewIPLimiter(formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	return limiter.New(memory.NewStore(), rate, limiter.WithTrustForwardHeader(false)), nil
}

// RateLimit rejects clients that exceeded their per-IP budget with 429.
func RateLimit(l *limiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := l.GetIPKey(r)
			lctx, err := l.Get(r.Context(), ip)
			if err != nil {
				logger.From(r.Context()).Error("failed to get rate limit context", "ip", ip, "error", err)
				transport.WriteAppError(w, internal.NewInternalError("rate limit check failed", err))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

			if lctx.Reached {
				logger.From(r.Context()).Warn("rate limit exceeded", "ip", ip, "limit", lctx.Limit)
				transport.WriteAppError(w, internal.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
