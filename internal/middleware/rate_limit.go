package middleware

import (
	"hash/fnv"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nosenfield/smart-scrip/internal/domain/dto"
	"github.com/nosenfield/smart-scrip/internal/i18n"
	"github.com/nosenfield/smart-scrip/internal/logger"
	"github.com/nosenfield/smart-scrip/internal/metrics"
)

const (
	// defaultNumShards is the default number of shards for the rate limiter.
	defaultNumShards = 16
)

// RateLimiter decides whether a client identity may make another request.
// CheckAndConsume must be atomic per identity.
type RateLimiter interface {
	CheckAndConsume(identity string) (allowed bool, remaining int)
	// Limit is the nominal number of requests per window.
	Limit() int
	// Window is the period after which a client's allowance is restored.
	Window() time.Duration
}

// windowCounter counts one identity's requests in its current window.
type windowCounter struct {
	count int
	start time.Time
}

type limiterShard struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
}

// ShardedRateLimiter is a fixed-window counter per identity, sharded by
// identity hash so unrelated clients rarely contend. Counters live in process
// memory: with several replicas each enforces its own limit. A client
// straddling a window boundary can briefly make up to twice the nominal rate.
type ShardedRateLimiter struct {
	shards   []*limiterShard
	rate     int
	window   time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a limiter allowing rate requests per window.
func NewRateLimiter(rate int, window time.Duration) *ShardedRateLimiter {
	return NewShardedRateLimiter(rate, window, defaultNumShards)
}

// NewShardedRateLimiter is NewRateLimiter with an explicit shard count.
func NewShardedRateLimiter(rate int, window time.Duration, numShards int) *ShardedRateLimiter {
	if numShards <= 0 {
		numShards = defaultNumShards
	}

	rl := &ShardedRateLimiter{
		shards: make([]*limiterShard, numShards),
		rate:   rate,
		window: window,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	for i := range rl.shards {
		rl.shards[i] = &limiterShard{counters: make(map[string]*windowCounter)}
	}

	go rl.cleanup()
	return rl
}

func (rl *ShardedRateLimiter) shardFor(identity string) *limiterShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identity))
	return rl.shards[h.Sum32()%uint32(len(rl.shards))]
}

// CheckAndConsume implements RateLimiter. The check and the increment happen
// under the shard lock.
func (rl *ShardedRateLimiter) CheckAndConsume(identity string) (allowed bool, remaining int) {
	if rl.rate <= 0 {
		return false, 0
	}

	shard := rl.shardFor(identity)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	now := rl.now()
	c, ok := shard.counters[identity]
	if !ok || now.Sub(c.start) >= rl.window {
		c = &windowCounter{start: now}
		shard.counters[identity] = c
	}
	if c.count >= rl.rate {
		return false, 0
	}
	c.count++
	return true, rl.rate - c.count
}

// Limit implements RateLimiter.
func (rl *ShardedRateLimiter) Limit() int {
	return rl.rate
}

// Window implements RateLimiter.
func (rl *ShardedRateLimiter) Window() time.Duration {
	return rl.window
}

// cleanup runs cleanupExpired every minute until Stop.
func (rl *ShardedRateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupExpired()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanupExpired forgets identities idle for more than two windows.
func (rl *ShardedRateLimiter) cleanupExpired() {
	cutoff := rl.now().Add(-2 * rl.window)

	for _, shard := range rl.shards {
		shard.mu.Lock()
		for id, c := range shard.counters {
			if c.start.Before(cutoff) {
				delete(shard.counters, id)
			}
		}
		shard.mu.Unlock()
	}
}

// Stop shuts down the cleanup goroutine. It is safe to call more than once.
func (rl *ShardedRateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
	})
}

// Stats returns the number of tracked identities, in total and per shard.
func (rl *ShardedRateLimiter) Stats() (total int, perShard []int) {
	perShard = make([]int, len(rl.shards))
	for i, shard := range rl.shards {
		shard.mu.Lock()
		perShard[i] = len(shard.counters)
		shard.mu.Unlock()
		total += perShard[i]
	}
	return total, perShard
}

// RateLimit returns a middleware that limits requests per client identity,
// keyed on the authenticated client or, failing that, the client IP.
func RateLimit(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := ClientIdentity(c)
		allowed, remaining := limiter.CheckAndConsume(identity)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			metrics.RecordRateLimitRejection()
			logger.FromContext(c.Request.Context()).Warn().
				Str("identity", identity).
				Msg("Rate limit exceeded")

			retryAfter := int(math.Ceil(limiter.Window().Seconds()))
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			locale := i18n.GetLocale(c)
			errorResp := dto.NewError(dto.ErrCodeRateLimit, i18n.GetTranslator().Translate(i18n.ErrKeyRateLimitExceeded, locale)).
				WithRequestID(GetRequestID(c))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResp)
			return
		}

		c.Next()
	}
}
