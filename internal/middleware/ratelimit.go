package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/SimoSabev/LynkSkill-sub003/pkg/errors"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/response"
)

const limiterIdleTTL = 10 * time.Minute

// KeyedLimiter hands out one token bucket per key.
type KeyedLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*keyedEntry
	limit     rate.Limit
	burst     int
	clock     func() time.Time
	lastSweep time.Time
}

type keyedEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedLimiter constructs a limiter refilling at r tokens per second with burst b.
func NewKeyedLimiter(r rate.Limit, b int) *KeyedLimiter {
	return &KeyedLimiter{
		limiters: make(map[string]*keyedEntry),
		limit:    r,
		burst:    b,
		clock:    time.Now,
	}
}

// Allow consumes a token from key's bucket.
func (l *KeyedLimiter) Allow(key string) bool {
	now := l.clock()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > limiterIdleTTL {
		for k, entry := range l.limiters {
			if now.Sub(entry.lastSeen) > limiterIdleTTL {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}

	entry, ok := l.limiters[key]
	if !ok {
		entry = &keyedEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// RateLimitByUser throttles authenticated callers to perSecond requests with burst. Anonymous
// requests fall back to the client IP. Must run after Authenticate to key by user.
func RateLimitByUser(perSecond float64, burst int) gin.HandlerFunc {
	if perSecond <= 0 || burst <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := NewKeyedLimiter(rate.Limit(perSecond), burst)
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID := c.GetString(CtxUserIDKey); userID != "" {
			key = "user:" + userID
		}
		if !limiter.Allow(key) {
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(perSecond)))
			response.Error(c, errors.ErrRateLimit)
			c.Abort()
			return
		}
		c.Next()
	}
}

func retryAfterSeconds(perSecond float64) int {
	seconds := int(1 / perSecond)
	if seconds < 1 {
		return 1
	}
	return seconds
}
