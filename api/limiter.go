package api

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

// clientLimiter holds one token bucket per client address. Idle buckets
// expire from the cache.
type clientLimiter struct {
	limit   rate.Limit
	burst   int
	clients *cache.Cache
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	if burst < 1 {
		burst = int(math.Max(1, math.Ceil(rps)))
	}
	return &clientLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		clients: cache.New(limiterIdleTTL, 2*limiterIdleTTL),
	}
}

func (l *clientLimiter) get(key string) *rate.Limiter {
	if v, ok := l.clients.Get(key); ok {
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	if err := l.clients.Add(key, lim, cache.DefaultExpiration); err != nil {
		// lost the race to another request from the same client
		if v, ok := l.clients.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

func (l *clientLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.get(clientKey(r)).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]errorBody{
				"error": {Code: "RATE_LIMITED", Message: "too many requests"},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
