package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/dukerupert/nahl/internal/domain"
)

// RateLimiterConfig configures the rate limiter
type RateLimiterConfig struct {
	// RequestsPerSecond is the rate of token refill
	RequestsPerSecond float64

	// BurstSize is the maximum number of requests allowed in a burst
	BurstSize int

	// CleanupInterval is how often idle buckets are dropped
	CleanupInterval time.Duration

	// KeyFunc extracts the rate limit key from the request.
	// Default: visitor session, then client IP.
	KeyFunc func(r *http.Request) string
}

// CartRateLimiterConfig limits cart mutations. A shopper hammering the
// quantity buttons stays well under it.
func CartRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 5,
		BurstSize:         20,
		CleanupInterval:   time.Minute,
		KeyFunc:           SessionOrIP,
	}
}

// SessionOrIP keys a request by visitor session, falling back to client IP.
func SessionOrIP(r *http.Request) string {
	if session := domain.SessionFromContext(r.Context()); session != "" {
		return "session:" + session
	}
	return "ip:" + GetClientIP(r)
}

type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
}

// RateLimiter is an in-memory token bucket limiter.
type RateLimiter struct {
	config  RateLimiterConfig
	now     func() time.Time
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	stop    chan struct{}
	once    sync.Once
}

// NewRateLimiter creates a limiter and starts its cleanup loop.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = SessionOrIP
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Minute
	}

	rl := &RateLimiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*tokenBucket),
		stop:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow takes a token for key if one is available.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	burst := float64(rl.config.BurstSize)

	bucket, ok := rl.buckets[key]
	if !ok {
		bucket = &tokenBucket{tokens: burst, lastRefill: now}
		rl.buckets[key] = bucket
	}

	bucket.tokens = min(burst, bucket.tokens+now.Sub(bucket.lastRefill).Seconds()*rl.config.RequestsPerSecond)
	bucket.lastRefill = now

	if bucket.tokens < 1 {
		return false
	}
	bucket.tokens--
	return true
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

// sweep drops full buckets that have been idle for a cleanup interval.
func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, bucket := range rl.buckets {
		if bucket.tokens >= float64(rl.config.BurstSize) && now.Sub(bucket.lastRefill) > rl.config.CleanupInterval {
			delete(rl.buckets, key)
		}
	}
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(rl.config.KeyFunc(r)) {
			respondTooManyRequests(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
