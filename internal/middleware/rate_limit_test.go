package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nosenfield/smart-scrip/internal/domain/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShardedRateLimiter(t *testing.T) {
	tests := []struct {
		name       string
		numShards  int
		wantShards int
	}{
		{name: "default shards when zero", numShards: 0, wantShards: defaultNumShards},
		{name: "default shards when negative", numShards: -1, wantShards: defaultNumShards},
		{name: "custom shard count", numShards: 8, wantShards: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewShardedRateLimiter(10, time.Minute, tt.numShards)
			defer rl.Stop()

			assert.Len(t, rl.shards, tt.wantShards)
			assert.Equal(t, 10, rl.Limit())
			assert.Equal(t, time.Minute, rl.Window())
		})
	}
}

func TestShardedRateLimiter_CheckAndConsume(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Stop()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for want := 2; want >= 0; want-- {
		allowed, remaining := rl.CheckAndConsume("ip:1.2.3.4")
		assert.True(t, allowed)
		assert.Equal(t, want, remaining)
	}

	allowed, remaining := rl.CheckAndConsume("ip:1.2.3.4")
	assert.False(t, allowed)
	assert.Zero(t, remaining)

	allowed, _ = rl.CheckAndConsume("ip:5.6.7.8")
	assert.True(t, allowed, "other identities have their own allowance")

	now = now.Add(time.Minute)
	allowed, remaining = rl.CheckAndConsume("ip:1.2.3.4")
	assert.True(t, allowed, "allowance restored after the window")
	assert.Equal(t, 2, remaining)
}

func TestShardedRateLimiter_Concurrent(t *testing.T) {
	rl := NewRateLimiter(50, time.Minute)
	defer rl.Stop()

	var granted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := rl.CheckAndConsume("client:shared"); ok {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(50), granted.Load())
}

func TestShardedRateLimiter_CleanupAndStats(t *testing.T) {
	rl := NewShardedRateLimiter(5, time.Second, 4)
	defer rl.Stop()

	start := time.Now()
	rl.now = func() time.Time { return start }
	rl.CheckAndConsume("a")
	rl.CheckAndConsume("b")

	total, perShard := rl.Stats()
	assert.Equal(t, 2, total)
	assert.Len(t, perShard, 4)

	rl.now = func() time.Time { return start.Add(3 * time.Second) }
	rl.cleanupExpired()

	total, _ = rl.Stats()
	assert.Zero(t, total)

	rl.Stop()
	rl.Stop()
}

func TestTokenBucketLimiter(t *testing.T) {
	l := NewTokenBucketLimiter(2, time.Hour)
	defer l.Stop()

	ok, remaining := l.CheckAndConsume("ip:1.1.1.1")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)

	ok, _ = l.CheckAndConsume("ip:1.1.1.1")
	assert.True(t, ok)

	ok, remaining = l.CheckAndConsume("ip:1.1.1.1")
	assert.False(t, ok)
	assert.Zero(t, remaining)

	ok, _ = l.CheckAndConsume("ip:2.2.2.2")
	assert.True(t, ok)

	l.evictIdle(time.Now().Add(3 * time.Hour))
	ok, _ = l.CheckAndConsume("ip:1.1.1.1")
	assert.True(t, ok, "evicted identity starts with a full bucket")
}

func TestRateLimit_Middleware(t *testing.T) {
	limiters := map[string]RateLimiter{
		"fixed window": NewRateLimiter(2, time.Minute),
		"token bucket": NewTokenBucketLimiter(2, time.Minute),
	}

	for name, limiter := range limiters {
		t.Run(name, func(t *testing.T) {
			router := gin.New()
			router.Use(RequestID(), RateLimit(limiter))
			router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

			send := func() *httptest.ResponseRecorder {
				req := httptest.NewRequest(http.MethodGet, "/test", nil)
				req.RemoteAddr = "192.0.2.1:1234"
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)
				return w
			}

			first := send()
			assert.Equal(t, http.StatusOK, first.Code)
			assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
			assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

			assert.Equal(t, http.StatusOK, send().Code)

			rejected := send()
			require.Equal(t, http.StatusTooManyRequests, rejected.Code)
			assert.Equal(t, "60", rejected.Header().Get("Retry-After"))
			assert.Equal(t, "0", rejected.Header().Get("X-RateLimit-Remaining"))

			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rejected.Body.Bytes(), &body))
			assert.Equal(t, dto.ErrCodeRateLimit, body.Error)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}
