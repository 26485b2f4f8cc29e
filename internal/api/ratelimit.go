package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig tunes the per-IP HTTP limiter. The API surface is
// tiny (score, stats, level swaps), so the defaults are deliberately
// tight; spectators get their state over the websocket, not by polling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	// CleanupInterval bounds how long an idle IP's limiter is kept.
	CleanupInterval time.Duration
}

var DefaultRateLimitConfig = RateLimitConfig{
	RequestsPerSecond: 10,
	Burst:             20,
	CleanupInterval:   5 * time.Minute,
}

// visitor is one IP's token bucket plus the bookkeeping to expire it.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter throttles HTTP requests per client IP. Stale visitors
// are swept opportunistically on the request path rather than by a
// background goroutine, so an idle server holds no timers.
type IPRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	cfg       RateLimitConfig
	lastSweep time.Time

	rejectedCount uint64 // atomic
	allowedCount  uint64 // atomic
}

func NewIPRateLimiter(cfg RateLimitConfig) *IPRateLimiter {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultRateLimitConfig.CleanupInterval
	}
	return &IPRateLimiter{
		visitors:  make(map[string]*visitor),
		cfg:       cfg,
		lastSweep: time.Now(),
	}
}

// Stop releases the limiter. Present for symmetry with other server
// components; there is no goroutine to halt.
func (rl *IPRateLimiter) Stop() {}

// Allow reports whether a request from ip fits its token bucket.
func (rl *IPRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	now := time.Now()
	if now.Sub(rl.lastSweep) > rl.cfg.CleanupInterval {
		rl.sweepLocked(now)
	}

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{
			limiter: rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst),
		}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	if v.limiter.Allow() {
		atomic.AddUint64(&rl.allowedCount, 1)
		return true
	}
	atomic.AddUint64(&rl.rejectedCount, 1)
	return false
}

// sweepLocked drops visitors idle for two cleanup intervals. Caller
// holds mu.
func (rl *IPRateLimiter) sweepLocked(now time.Time) {
	cutoff := now.Add(-2 * rl.cfg.CleanupInterval)
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
	rl.lastSweep = now
}

// Middleware rejects over-limit requests with 429 before they reach
// the router.
func (rl *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(GetClientIP(r)) {
			RecordConnectionRejected("rate_limit")
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetStats returns accept/reject counters for the stats endpoint.
func (rl *IPRateLimiter) GetStats() map[string]uint64 {
	return map[string]uint64{
		"allowed":  atomic.LoadUint64(&rl.allowedCount),
		"rejected": atomic.LoadUint64(&rl.rejectedCount),
	}
}

// GetClientIP resolves the client address, honouring forwarding
// headers. Forwarded values are spoofable unless a trusted proxy sets
// them; this server is meant to sit behind one in production.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First hop is the original client.
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// WebSocketRateLimiter caps concurrent spectator connections per IP.
type WebSocketRateLimiter struct {
	mu       sync.Mutex
	counts   map[string]int
	maxPerIP int

	rejectedCount uint64 // atomic
}

func NewWebSocketRateLimiter(maxPerIP int) *WebSocketRateLimiter {
	return &WebSocketRateLimiter{
		counts:   make(map[string]int),
		maxPerIP: maxPerIP,
	}
}

// Allow reserves a connection slot for ip. The caller must Release the
// slot when the connection closes (or the upgrade fails).
func (wrl *WebSocketRateLimiter) Allow(ip string) bool {
	wrl.mu.Lock()
	defer wrl.mu.Unlock()

	if wrl.counts[ip] >= wrl.maxPerIP {
		atomic.AddUint64(&wrl.rejectedCount, 1)
		return false
	}
	wrl.counts[ip]++
	return true
}

// Release frees a slot reserved by Allow.
func (wrl *WebSocketRateLimiter) Release(ip string) {
	wrl.mu.Lock()
	defer wrl.mu.Unlock()

	if wrl.counts[ip] <= 1 {
		delete(wrl.counts, ip)
		return
	}
	wrl.counts[ip]--
}

// GetStats returns rejection counters for the stats endpoint.
func (wrl *WebSocketRateLimiter) GetStats() map[string]uint64 {
	return map[string]uint64{
		"rejected": atomic.LoadUint64(&wrl.rejectedCount),
	}
}

// IsAllowedOrigin reports whether a browser origin may open the
// spectator websocket. Local development hosts pass on any port.
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	return strings.HasPrefix(origin, "http://localhost") ||
		strings.HasPrefix(origin, "http://127.0.0.1")
}
