package middleware

import (
	"sync"
	"time"

	"github.com/juju/ratelimit"
)

type bucketEntry struct {
	bucket   *ratelimit.Bucket
	lastSeen time.Time
}

// TokenBucketLimiter is a RateLimiter with one token bucket per identity.
// Buckets refill continuously, so there is no window-boundary burst.
type TokenBucketLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucketEntry
	rate     int
	window   time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewTokenBucketLimiter allows rate requests per window with bursts up to rate.
func NewTokenBucketLimiter(rate int, window time.Duration) *TokenBucketLimiter {
	if rate < 1 {
		rate = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	l := &TokenBucketLimiter{
		buckets: make(map[string]*bucketEntry),
		rate:    rate,
		window:  window,
		stopCh:  make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// CheckAndConsume implements RateLimiter.
func (l *TokenBucketLimiter) CheckAndConsume(identity string) (bool, int) {
	l.mu.Lock()
	entry, ok := l.buckets[identity]
	if !ok {
		perSecond := float64(l.rate) / l.window.Seconds()
		entry = &bucketEntry{bucket: ratelimit.NewBucketWithRate(perSecond, int64(l.rate))}
		l.buckets[identity] = entry
	}
	entry.lastSeen = time.Now()
	l.mu.Unlock()

	if entry.bucket.TakeAvailable(1) == 0 {
		return false, 0
	}
	return true, int(entry.bucket.Available())
}

// Limit implements RateLimiter.
func (l *TokenBucketLimiter) Limit() int {
	return l.rate
}

// Window implements RateLimiter.
func (l *TokenBucketLimiter) Window() time.Duration {
	return l.window
}

func (l *TokenBucketLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictIdle(time.Now())
		case <-l.stopCh:
			return
		}
	}
}

// evictIdle drops buckets unused for two windows; by then they are full again.
func (l *TokenBucketLimiter) evictIdle(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, entry := range l.buckets {
		if now.Sub(entry.lastSeen) > 2*l.window {
			delete(l.buckets, id)
		}
	}
}

// Stop shuts down the cleanup goroutine. It is safe to call more than once.
func (l *TokenBucketLimiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})
}
