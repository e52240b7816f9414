package server

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// limiterTTL is how long an idle limiter is kept before sweeping.
const limiterTTL = 10 * time.Minute

// rateLimiter manages per-client token buckets keyed by remote address.
type rateLimiter struct {
	mu                sync.Mutex
	limiters          map[string]*limiterEntry
	requestsPerMinute int
	burst             int
	now               func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiter(requestsPerMinute, burst int) *rateLimiter {
	return &rateLimiter{
		limiters:          make(map[string]*limiterEntry),
		requestsPerMinute: requestsPerMinute,
		burst:             burst,
		now:               time.Now,
	}
}

func (rl *rateLimiter) perSecond() rate.Limit {
	return rate.Limit(float64(rl.requestsPerMinute) / 60.0)
}

// allow reports whether a request from key may proceed now.
func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, exists := rl.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.perSecond(), rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// retryAfter estimates when key gets its next token.
func (rl *rateLimiter) retryAfter(key string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.limiters[key]
	if !exists {
		return 0
	}
	missing := 1 - entry.limiter.TokensAt(rl.now())
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / float64(rl.perSecond()) * float64(time.Second))
}

// sweep drops limiters idle for longer than limiterTTL.
func (rl *rateLimiter) sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > limiterTTL {
			delete(rl.limiters, key)
			removed++
		}
	}
	return removed
}

// clientKey identifies the caller by remote address. The session cookie is
// chosen by the client, so it cannot select the bucket.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}

// rateLimit rejects requests over the client's budget with 429.
func (h *handler) rateLimit(next http.Handler) http.Handler {
	if h.limiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !h.limiter.allow(key) {
			retryAfter := int(h.limiter.retryAfter(key).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(h.limiter.requestsPerMinute))
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

			h.logger.Warn("rate limit exceeded",
				zap.String("op", "server.rateLimit"),
				zap.String("client", key),
				zap.Int("retryAfter", retryAfter),
			)
			h.writeData(w, r, http.StatusTooManyRequests, errorResponse{
				Error: fmt.Sprintf("too many requests, retry after %d seconds", retryAfter),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
