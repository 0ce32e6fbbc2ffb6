// Package ratelimit throttles credential-guessing traffic on the login
// and registration forms with one token bucket per client IP. Buckets
// unused for a while are evicted by a background sweep.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter manages per-IP token buckets.
type Limiter struct {
	ratePerMin int
	burst      int

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	stopCh chan struct{}
}

// New creates a Limiter allowing ratePerMin requests per minute with the
// given burst, and starts the eviction sweep.
func New(ratePerMin, burst int) *Limiter {
	l := &Limiter{
		ratePerMin: ratePerMin,
		burst:      burst,
		limiters:   map[string]*clientLimiter{},
		stopCh:     make(chan struct{}),
	}

	go l.sweepLoop()

	return l
}

// Stop terminates the eviction sweep.
func (l *Limiter) Stop() {
	close(l.stopCh)
}

// Middleware rejects requests beyond the per-IP budget with a 429.
func (l *Limiter) Middleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.allow(ip) {
			w.Header().Set("Retry-After", "60")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (l *Limiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, found := l.limiters[ip]
	if !found {
		entry = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(l.ratePerMin)/60.0), l.burst),
		}
		l.limiters[ip] = entry
	}
	entry.lastAccess = time.Now()

	return entry.limiter.Allow()
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep(10 * time.Minute)
		case <-l.stopCh:
			return
		}
	}
}

func (l *Limiter) sweep(ttl time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, entry := range l.limiters {
		if now.Sub(entry.lastAccess) > ttl {
			delete(l.limiters, ip)
		}
	}
}

// clientIP extracts the client address, preferring the X-Real-IP and
// X-Forwarded-For headers over the socket peer.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
