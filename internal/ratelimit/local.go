package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	localCleanupInterval = 5 * time.Minute
	localEntryTTL        = 10 * time.Minute
)

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter keeps one x/time/rate limiter per key in process memory.
type LocalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*localEntry
	rate     rate.Limit
	burst    int
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewLocalLimiter(rps float64, burst int) *LocalLimiter {
	l := &LocalLimiter{
		limiters: make(map[string]*localEntry),
		rate:     rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop(localCleanupInterval)
	return l
}

func (l *LocalLimiter) Allow(key string) *RateLimitResult {
	now := l.now()

	l.mu.Lock()
	entry, ok := l.limiters[key]
	if !ok {
		entry = &localEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()

	allowed := entry.limiter.AllowN(now, 1)
	return bucketResult(allowed, entry.limiter.TokensAt(now), float64(l.rate), l.burst, now)
}

func (l *LocalLimiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *LocalLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup(l.now().Add(-localEntryTTL))
		case <-l.stop:
			return
		}
	}
}

func (l *LocalLimiter) cleanup(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, entry := range l.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(l.limiters, key)
		}
	}
}

func (l *LocalLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
