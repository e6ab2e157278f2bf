// Package upstream holds the two vendor adapters (flow/darkpool/GEX, and
// tick/aggregates/indicators), each calling through a RESTClient guarded by
// a sliding-window rate limiter and a circuit breaker, per spec §4.A. The
// Client interface declared here is not implemented by either adapter.
package upstream

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Window is 60 seconds, per spec §4.A.
const rateWindow = 60 * time.Second

// SlidingWindowLimiter trims a deque of call timestamps older than 60s and
// blocks until the oldest entry expires + 50ms once the window is full.
// Grounded on the teacher's token-bucket shape (internal/provider/rate_limiter.go)
// but implements the spec's literal sliding-window deque semantics instead.
type SlidingWindowLimiter struct {
	mu       sync.Mutex
	times    *list.List // front = oldest
	capacity int
}

// NewSlidingWindowLimiter builds a limiter with an internal cap below the
// vendor ceiling for headroom (spec: vendor ~120/min, internal cap 100/min).
func NewSlidingWindowLimiter(capacity int) *SlidingWindowLimiter {
	if capacity <= 0 {
		capacity = 100
	}
	return &SlidingWindowLimiter{
		times:    list.New(),
		capacity: capacity,
	}
}

// Wait blocks, respecting ctx, until a call slot is available, then records it.
func (l *SlidingWindowLimiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := time.Now()
		l.trim(now)

		if l.times.Len() < l.capacity {
			l.times.PushBack(now)
			l.mu.Unlock()
			return nil
		}

		oldest := l.times.Front().Value.(time.Time)
		wait := oldest.Add(rateWindow).Add(50 * time.Millisecond).Sub(now)
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// trim removes timestamps older than the 60s window. Caller holds l.mu.
func (l *SlidingWindowLimiter) trim(now time.Time) {
	cutoff := now.Add(-rateWindow)
	for e := l.times.Front(); e != nil; {
		next := e.Next()
		if e.Value.(time.Time).Before(cutoff) {
			l.times.Remove(e)
		} else {
			break
		}
		e = next
	}
}

// InWindow reports how many calls are currently inside the rolling window,
// used by tests asserting the §8 rate-limiter invariant.
func (l *SlidingWindowLimiter) InWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trim(time.Now())
	return l.times.Len()
}
