package ratelimit

import (
	"context"
	"sync"
	"time"
)

const cleanupRetention = 5 * time.Minute

// window tracks one key's count in the current fixed window.
type window struct {
	mu        sync.Mutex
	count     int
	expiresAt time.Time
}

// MemoryLimiter keeps window state in process memory. Suitable for tests and
// single-instance deployments; under multi-process deployment the effective
// limit loosens by the instance count.
type MemoryLimiter struct {
	windows sync.Map // map[string]*window
	stopCh  chan struct{}
	stopped sync.Once
	now     func() time.Time
}

// NewMemoryLimiter creates an in-memory limiter and starts its cleanup loop.
func NewMemoryLimiter() *MemoryLimiter {
	l := &MemoryLimiter{
		stopCh: make(chan struct{}),
		now:    time.Now,
	}
	go l.cleanupLoop(time.Minute)
	return l
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, windowDur time.Duration) (*Decision, error) {
	v, _ := l.windows.LoadOrStore(key, &window{})
	w := v.(*window)

	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.now()
	if !now.Before(w.expiresAt) {
		w.count = 0
		w.expiresAt = now.Add(windowDur)
	}

	if w.count >= limit {
		return &Decision{
			Allowed:    false,
			Remaining:  0,
			Limit:      limit,
			RetryAfter: w.expiresAt.Sub(now),
		}, nil
	}

	w.count++
	return &Decision{
		Allowed:   true,
		Remaining: limit - w.count,
		Limit:     limit,
	}, nil
}

// Stop stops the cleanup loop.
func (l *MemoryLimiter) Stop() {
	l.stopped.Do(func() { close(l.stopCh) })
}

func (l *MemoryLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCh:
			return
		}
	}
}

func (l *MemoryLimiter) cleanup() {
	threshold := l.now().Add(-cleanupRetention)
	l.windows.Range(func(key, value interface{}) bool {
		w := value.(*window)
		w.mu.Lock()
		stale := w.expiresAt.Before(threshold)
		w.mu.Unlock()
		if stale {
			l.windows.Delete(key)
		}
		return true
	})
}
