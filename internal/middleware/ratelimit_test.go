package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func serve(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestWindowRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(WindowRateLimit(NewMemoryRateStore(), 2, 100*time.Millisecond))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	// First two requests should pass
	for i := 0; i < 2; i++ {
		w := serve(r, "/ping")
		require.Equal(t, http.StatusOK, w.Code)
	}

	// Third request within window should be rate-limited
	w := serve(r, "/ping")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	time.Sleep(120 * time.Millisecond)

	// After window resets, should pass again
	require.Equal(t, http.StatusOK, serve(r, "/ping").Code)
}

type failingRateStore struct{}

func (failingRateStore) Increment(context.Context, string, time.Duration) (int, time.Duration, error) {
	return 0, 0, errors.New("store down")
}

func TestWindowRateLimitFailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(WindowRateLimit(failingRateStore{}, 1, time.Minute))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, serve(r, "/ping").Code)
	require.Equal(t, http.StatusOK, serve(r, "/ping").Code)
}

func TestRateLimitByUserKeysOnUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.Query("user"); id != "" {
			c.Set(CtxUserIDKey, id)
		}
		c.Next()
	})
	r.Use(RateLimitByUser(0.001, 1))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, serve(r, "/ping?user=a").Code)
	w := serve(r, "/ping?user=a")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))

	// Another user has a separate bucket.
	require.Equal(t, http.StatusOK, serve(r, "/ping?user=b").Code)
	// Anonymous callers are keyed by IP.
	require.Equal(t, http.StatusOK, serve(r, "/ping").Code)
	require.Equal(t, http.StatusTooManyRequests, serve(r, "/ping").Code)
}

func TestKeyedLimiterEvictsIdleKeys(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	limiter := NewKeyedLimiter(rate.Every(time.Hour), 1)
	limiter.clock = func() time.Time { return now }

	require.True(t, limiter.Allow("a"))
	require.False(t, limiter.Allow("a"))

	now = now.Add(limiterIdleTTL + time.Minute)
	require.True(t, limiter.Allow("b"))
	require.NotContains(t, limiter.limiters, "a")
}
