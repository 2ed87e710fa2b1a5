package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"

	"starry-api/internal/config"
	"starry-api/internal/logger"

	"golang.org/x/time/rate"
)

// RateLimiter applies a per-client-address request budget. Counters
// live in process memory only.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
	cfg     config.RateLimitConfig
}

// NewRateLimiter creates a limiter allowing cfg.MaxRequests per
// cfg.Window for each client address.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*rate.Limiter),
		limit:   rate.Limit(float64(cfg.MaxRequests) / cfg.Window.Seconds()),
		burst:   cfg.MaxRequests,
		cfg:     cfg,
	}
}

// Limit wraps a handler with the per-client rate check, answering 429
// with a Retry-After header when the budget is spent.
func (rl *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		reservation := rl.limiterFor(ip).Reserve()
		if !reservation.OK() || reservation.Delay() > 0 {
			retryAfter := int(rl.cfg.Window.Seconds())
			if reservation.OK() {
				retryAfter = int(math.Ceil(reservation.Delay().Seconds()))
				reservation.Cancel()
			}
			if retryAfter < 1 {
				retryAfter = 1
			}

			logger.Log.WithField("client", ip).Warn("Rate limit exceeded")

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]any{
				"error":      "Too many requests",
				"retryAfter": retryAfter,
			})
			return
		}

		next(w, r)
	}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.clients[ip]
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.clients[ip] = limiter
	}
	return limiter
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
