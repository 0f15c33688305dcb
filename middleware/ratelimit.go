// middleware/ratelimit.go
package middleware

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Token bucket rate limiter implementation
type TokenBucket struct {
	tokens         float64
	maxTokens      float64
	refillRate     float64 // tokens per second
	lastRefillTime time.Time
	mu             sync.Mutex
}

func NewTokenBucket(maxTokens, refillRate float64, now time.Time) *TokenBucket {
	return &TokenBucket{
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillRate:     refillRate,
		lastRefillTime: now,
	}
}

func (tb *TokenBucket) AllowAt(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := now.Sub(tb.lastRefillTime).Seconds()
	tb.tokens += elapsed * tb.refillRate
	if tb.tokens > tb.maxTokens {
		tb.tokens = tb.maxTokens
	}
	tb.lastRefillTime = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimiter holds one bucket per key. The window always refills, so a
// throttled key is never locked out permanently.
type RateLimiter struct {
	buckets map[string]*TokenBucket
	mu      sync.RWMutex

	// Configuration
	maxRequests   int
	windowSeconds int

	// now is swappable for tests
	now func() time.Time
}

var (
	generalLimiter *RateLimiter
	flagLimiter    *RateLimiter
)

func init() {
	// General per-IP limiter across the whole app
	generalMaxReq := getEnvInt("RATE_LIMIT_MAX_REQUESTS_GENERAL", 100)
	generalWindow := getEnvInt("RATE_LIMIT_WINDOW_GENERAL", 900) // 15 min default
	if generalWindow <= 0 {
		generalWindow = 900 // guard
	}

	// Flag submission limiter, keyed per (user, challenge)
	flagMaxReq := getEnvInt("RATE_LIMIT_MAX_REQUESTS", 10)
	flagWindow := getEnvInt("RATE_LIMIT_WINDOW", 60)
	if flagWindow <= 0 {
		flagWindow = 60
	}

	generalLimiter = NewRateLimiter(generalMaxReq, generalWindow)
	flagLimiter = NewRateLimiter(flagMaxReq, flagWindow)

	// Cleanup old buckets every 10 minutes
	go startCleanupRoutine()
}

func NewRateLimiter(maxRequests, windowSeconds int) *RateLimiter {
	return &RateLimiter{
		buckets:       make(map[string]*TokenBucket),
		maxRequests:   maxRequests,
		windowSeconds: windowSeconds,
		now:           time.Now,
	}
}

// SetClock overrides the limiter's time source. Test hook.
func (rl *RateLimiter) SetClock(now func() time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.now = now
}

func (rl *RateLimiter) getBucket(key string) *TokenBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, exists := rl.buckets[key]
	if !exists {
		refillRate := float64(rl.maxRequests) / float64(rl.windowSeconds) // tokens/sec
		bucket = NewTokenBucket(float64(rl.maxRequests), refillRate, rl.now())
		rl.buckets[key] = bucket
	}
	return bucket
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.RLock()
	now := rl.now()
	rl.mu.RUnlock()
	return rl.getBucket(key).AllowAt(now)
}

// Cleanup old buckets periodically
func startCleanupRoutine() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cleanupOldBuckets(generalLimiter)
		cleanupOldBuckets(flagLimiter)
	}
}

func cleanupOldBuckets(rl *RateLimiter) {
	if rl == nil {
		return
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, bucket := range rl.buckets {
		bucket.mu.Lock()
		// Remove buckets that haven't been accessed in 30 minutes
		if now.Sub(bucket.lastRefillTime) > 30*time.Minute {
			delete(rl.buckets, key)
		}
		bucket.mu.Unlock()
	}
}

// Helper functions

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return def
}

func rateLimitDisabled() bool {
	// RATE_LIMIT_ENABLED=false disables limiter
	val := strings.ToLower(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")))
	return val == "false" || val == "0" || val == "no"
}

// FiberRateLimitMiddleware applies general per-IP rate limiting
func FiberRateLimitMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rateLimitDisabled() {
			return c.Next()
		}
		// Skip the health endpoint to reduce dev friction
		path := c.Path()
		if path == "/health" || path == "/api/health" {
			return c.Next()
		}

		clientIP := c.IP()
		if !generalLimiter.Allow(clientIP) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Rate limit exceeded. Please try again later.",
			})
		}
		return c.Next()
	}
}

// FlagSubmitRateLimitMiddleware throttles flag submissions per
// (user, challenge) pair. Runs after AuthMiddleware so the user id is set.
func FlagSubmitRateLimitMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rateLimitDisabled() {
			return c.Next()
		}

		userID, err := GetUserID(c)
		if err != nil {
			return err
		}
		key := fmt.Sprintf("%d:%s", userID, c.Params("challengeID"))

		if !flagLimiter.Allow(key) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Too many flag submissions. Cool down and try again shortly.",
			})
		}
		return c.Next()
	}
}

// FlagLimiter exposes the flag-submission limiter for wiring and tests.
func FlagLimiter() *RateLimiter {
	return flagLimiter
}
