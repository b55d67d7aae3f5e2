package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"resumeparser/internal/errors"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

const limiterEvictionAge = 10 * time.Minute

// LimiterManager keeps one token bucket per client key (IP or API key)
type LimiterManager struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	rate     rate.Limit
	burst    int
	hits     int64
	done     chan struct{}
	once     sync.Once
	logger   *errors.Logger
}

// RateLimiter is the limiter used by the server
type RateLimiter = LimiterManager

// NewRateLimiter creates a manager allowing requestsPerMin per key with the
// given burst capacity
func NewRateLimiter(requestsPerMin, burstCapacity int, logger *errors.Logger) *LimiterManager {
	if logger == nil {
		logger = errors.Discard()
	}
	if burstCapacity <= 0 {
		burstCapacity = 1
	}

	m := &LimiterManager{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    burstCapacity,
		done:     make(chan struct{}),
		logger:   logger,
	}

	go m.cleanupRoutine(limiterEvictionAge)
	return m
}

// GetLimiter retrieves or creates a limiter for a given key
func (m *LimiterManager) GetLimiter(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	limiter, exists := m.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(m.rate, m.burst)
		m.limiters[key] = limiter
	}
	m.lastSeen[key] = time.Now()

	return limiter
}

// Allow reports whether a request for key may proceed now
func (m *LimiterManager) Allow(key string) bool {
	if m.GetLimiter(key).Allow() {
		return true
	}
	m.mu.Lock()
	m.hits++
	m.mu.Unlock()
	return false
}

// GetStats returns current rate limiter statistics
func (m *LimiterManager) GetStats() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]any{
		"enabled":         true,
		"active_limiters": len(m.limiters),
		"rate_per_second": float64(m.rate),
		"rate_per_minute": float64(m.rate) * 60.0,
		"burst_capacity":  m.burst,
		"rejected":        m.hits,
	}
}

func (m *LimiterManager) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup(interval)
		case <-m.done:
			return
		}
	}
}

// cleanup removes limiters idle for longer than evictionAge
func (m *LimiterManager) cleanup(evictionAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, lastSeen := range m.lastSeen {
		if now.Sub(lastSeen) > evictionAge {
			delete(m.limiters, key)
			delete(m.lastSeen, key)
		}
	}

	m.logger.Debug("Rate limiter cleanup completed",
		"remaining_limiters", len(m.limiters))
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (m *LimiterManager) Close() {
	m.once.Do(func() { close(m.done) })
}

// rateLimitMiddleware rejects requests over the per-key budget with 429 and
// records the hit
func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	if s.RateLimiter == nil || s.RateLimit == nil || !s.RateLimit.Enabled {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		key := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
		if key == "" {
			next(w, r)
			return
		}

		if !s.RateLimiter.Allow(key) {
			s.Observability.GetMetrics().RecordRateLimitHit(r.Context(),
				attribute.String("endpoint", r.URL.Path),
				attribute.String("method", r.Method))
			s.Logger.Info("Rate limit exceeded",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"request_id", requestIDFromContext(r.Context()))
			writeErrorResponse(w, "Rate limit exceeded", "Too many requests", http.StatusTooManyRequests)
			return
		}

		next(w, r)
	}
}

// getRateLimitKey picks the bucket for a request. API keys win over IPs
// when both are enabled.
func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		if apiKey := extractAPIKey(r); apiKey != "" {
			return "api:" + apiKey
		}
	}

	if byIP {
		return "ip:" + getClientIP(r)
	}

	return ""
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP returns the first valid IP of a comma-separated list
func parseFirstIP(ips string) string {
	for ip := range strings.SplitSeq(ips, ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}
	return ""
}
