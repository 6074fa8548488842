package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tuanvumaihuynh/product-management/internal/http/apierr"
	"github.com/tuanvumaihuynh/product-management/internal/http/metric"
	"github.com/tuanvumaihuynh/product-management/pkg/zerror"
)

// Limiter decides whether the client identified by key may make another
// request. When denied, retryAfter says how long to wait.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, retryAfter time.Duration, err error)
}

var rateLimitedErr = zerror.NewTooManyRequests("RATE_LIMITED", "Too many requests")

type RateLimiter struct {
	limiter  Limiter
	limit    int
	window   time.Duration
	failOpen bool
	logger   *slog.Logger
	metrics  *metric.Metrics
}

// NewRateLimiter allows limit requests per window and client. With failOpen a
// limiter backend error lets the request through instead of rejecting it.
func NewRateLimiter(
	limiter Limiter,
	limit int,
	window time.Duration,
	failOpen bool,
	logger *slog.Logger,
	metrics *metric.Metrics,
) *RateLimiter {
	return &RateLimiter{
		limiter:  limiter,
		limit:    limit,
		window:   window,
		failOpen: failOpen,
		logger:   logger,
		metrics:  metrics,
	}
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	body, err := json.Marshal(apierr.New(rateLimitedErr))
	if err != nil {
		panic(err)
	}

	reject := func(w http.ResponseWriter, retryAfter time.Duration) {
		w.Header().Set("Retry-After", retryAfterHeader(retryAfter))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		//nolint:errcheck
		w.Write(body)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter, err := rl.limiter.Allow(r.Context(), clientIP(r), rl.limit, rl.window)
			if err != nil {
				if rl.failOpen {
					rl.logger.WarnContext(r.Context(), "rate limiter backend unavailable, allowing request",
						slog.Any("error", err))
					rl.observe("fail_open")
					next.ServeHTTP(w, r)
					return
				}
				rl.logger.ErrorContext(r.Context(), "rate limiter backend unavailable, rejecting request",
					slog.Any("error", err))
				rl.observe("fail_closed")
				reject(w, rl.window)
				return
			}

			if !allowed {
				rl.observe("rejected")
				reject(w, retryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) observe(outcome string) {
	if rl.metrics != nil {
		rl.metrics.RateLimitedTotal.WithLabelValues(outcome).Inc()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is an in-process token bucket per client. A bucket holds limit
// tokens and refills evenly over window.
type LocalLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	nextGC   time.Time
	now      func() time.Time
}

func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextGC) {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > 2*window {
				delete(l.visitors, k)
			}
		}
		l.nextGC = now.Add(window)
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(window/time.Duration(max(limit, 1))), limit)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	res := v.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, window, nil
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay, nil
	}
	return true, 0, nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func retryAfterHeader(d time.Duration) string {
	seconds := int((d + time.Second - 1) / time.Second)
	if seconds <= 0 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
