// Package ratelimit bounds the outbound fetch budget: a semaphore caps how
// many feed/article requests are in flight at once, and Pace serializes a
// polite delay between article fetches so source servers never see a burst.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

type Throttle struct {
	sem      chan struct{}
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// New creates a Throttle allowing maxConcurrent simultaneous outbound
// requests and at most one paced request per interval.
func New(maxConcurrent int, interval time.Duration) *Throttle {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Throttle{
		sem:      make(chan struct{}, maxConcurrent),
		interval: interval,
	}
}

// Acquire blocks until a concurrency slot is free or ctx is done.
func (t *Throttle) Acquire(ctx context.Context) error {
	select {
	case t.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Throttle) Release() {
	<-t.sem
}

// Pace blocks until at least one interval has passed since the previous
// paced call, process-wide. This is the single serialization point shared
// across topics.
func (t *Throttle) Pace(ctx context.Context) error {
	if t.interval <= 0 {
		return nil
	}

	t.mu.Lock()
	now := time.Now()
	next := t.last.Add(t.interval)
	if next.Before(now) {
		next = now
	}
	t.last = next
	t.mu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
