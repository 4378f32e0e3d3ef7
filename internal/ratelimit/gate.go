// Package ratelimit serializes provider-bound calls through a single
// process-wide gate so consecutive calls never start closer together than a
// configured minimum interval. The provider throttles aggressively and treats
// the account as one client, so one shared gate is the correct granularity.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Gate enforces a minimum interval between calls. The interval is measured
// from the completion of the previous call, and a failed call still counts.
// The zero interval disables waiting but keeps the serialization.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time

	// now and sleep are swappable for tests.
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewGate returns a gate with the given minimum interval between calls.
func NewGate(interval time.Duration) *Gate {
	return &Gate{
		interval: interval,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Do runs fn after waiting out the remainder of the minimum interval, then
// records the completion time regardless of fn's outcome. The lock is held
// for the duration of fn, which is what serializes concurrent callers.
// Cancellation during the wait aborts without recording, since no call was
// issued.
func (g *Gate) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.last.IsZero() {
		if remaining := g.interval - g.now().Sub(g.last); remaining > 0 {
			if err := g.sleep(ctx, remaining); err != nil {
				return err
			}
		}
	}

	err := fn(ctx)
	g.last = g.now()
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
