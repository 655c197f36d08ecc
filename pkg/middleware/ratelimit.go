package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/satjeet/ClinePythonDividis/pkg/httputil"
)

// bucket is one client's token bucket and when it was last used.
type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// buckets hands out one limiter per client key and forgets keys idle for
// longer than idle.
type buckets struct {
	mu    sync.Mutex
	byKey map[string]*bucket
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time
}

func newBuckets(rps, burst int, idle time.Duration) *buckets {
	return &buckets{
		byKey: make(map[string]*bucket),
		limit: rate.Limit(rps),
		burst: burst,
		idle:  idle,
		now:   time.Now,
	}
}

func (b *buckets) get(key string) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	bk, ok := b.byKey[key]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(b.limit, b.burst)}
		b.byKey[key] = bk
	}
	bk.lastSeen = b.now()
	return bk.limiter
}

func (b *buckets) evictIdle() {
	b.mu.Lock()
	defer b.mu.Unlock()

	cutoff := b.now().Add(-b.idle)
	for key, bk := range b.byKey {
		if bk.lastSeen.Before(cutoff) {
			delete(b.byKey, key)
		}
	}
}

func (b *buckets) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.byKey)
}

func (b *buckets) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(b.idle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.evictIdle()
		}
	}
}

// RateLimitConfig sizes the per-client token bucket.
type RateLimitConfig struct {
	RPS   int
	Burst int
	// TrustedProxies lists the networks of reverse proxies whose
	// X-Forwarded-For and X-Real-IP headers are believed. Requests from
	// anywhere else are keyed by their peer address.
	TrustedProxies []string
}

// RateLimit rejects clients that exceed their token bucket with 429 and code
// RATE_LIMITED. Buckets are keyed by client IP, never by anything the client
// can mint freely. Idle buckets are evicted until ctx is done.
func RateLimit(ctx context.Context, cfg RateLimitConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	b := newBuckets(cfg.RPS, cfg.Burst, 3*time.Minute)
	go b.evictLoop(ctx)
	return rateLimit(b, clientIPs{trusted: parsePrefixes(cfg.TrustedProxies, "trusted proxy", logger)}, logger)
}

func rateLimit(b *buckets, ips clientIPs, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ips.of(r)
			lim := b.get(key)
			if lim.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			logger.WarnContext(r.Context(), "rate limit exceeded",
				slog.String("client", key),
				slog.String("path", r.URL.Path),
			)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter(lim)))
			httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "RATE_LIMITED", Message: "too many requests"},
			})
		})
	}
}

// retryAfter is the whole number of seconds until lim has a token again.
func retryAfter(lim *rate.Limiter) int {
	if lim.Limit() <= 0 {
		return 1
	}
	missing := 1 - lim.Tokens()
	secs := int(math.Ceil(missing / float64(lim.Limit())))
	return max(secs, 1)
}
