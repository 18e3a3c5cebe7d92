package rpc

import (
	"sync"

	"golang.org/x/time/rate"
)

// rateLimiter hands out one token bucket per client source.
type rateLimiter struct {
	mu       sync.Mutex
	perMin   int
	burst    int
	visitors map[string]*rate.Limiter
}

func newRateLimiter(perMinute, burst int) *rateLimiter {
	return &rateLimiter{
		perMin:   perMinute,
		burst:    burst,
		visitors: make(map[string]*rate.Limiter),
	}
}

// allow reports whether source may submit another transaction. A
// non-positive rate disables throttling.
func (l *rateLimiter) allow(source string) bool {
	if l == nil || l.perMin <= 0 {
		return true
	}
	if source == "" {
		source = "unknown"
	}
	l.mu.Lock()
	limiter, ok := l.visitors[source]
	if !ok {
		burst := l.burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(l.perMin)/60.0), burst)
		l.visitors[source] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}
