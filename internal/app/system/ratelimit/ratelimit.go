// Package ratelimit counts hits per key over a fixed window. The auth
// handlers use it to slow credential guessing, keyed by client IP.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter allows up to limit hits per key within each window. A key's
// window opens on its first hit and expires after the configured
// duration. Safe for concurrent use.
type Limiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	hits      map[string]*bucket
	nextSweep time.Time
}

type bucket struct {
	n       int
	resetAt time.Time
}

func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:     limit,
		window:    window,
		hits:      make(map[string]*bucket),
		nextSweep: time.Now().Add(window),
	}
}

// Allow records a hit for key and reports whether it stayed within the
// limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.sweep(now)

	b := l.hits[key]
	if b == nil || now.After(b.resetAt) {
		l.hits[key] = &bucket{n: 1, resetAt: now.Add(l.window)}
		return true
	}
	if b.n >= l.limit {
		return false
	}
	b.n++
	return true
}

// Reset forgets a key, reopening its window. Called after a successful
// sign-in so earlier failed attempts stop counting.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.hits, key)
	l.mu.Unlock()
}

// sweep drops expired buckets so idle keys do not accumulate. Runs at
// most once per window, under the caller's lock.
func (l *Limiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for k, b := range l.hits {
		if now.After(b.resetAt) {
			delete(l.hits, k)
		}
	}
	l.nextSweep = now.Add(l.window)
}

// ClientIP returns the originating address of r, trusting the usual
// proxy headers before falling back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
