package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateSpacesSequentialCalls(t *testing.T) {
	const interval = 20 * time.Millisecond
	g := NewGate(interval)

	var starts []time.Time
	for i := 0; i < 4; i++ {
		err := g.Do(context.Background(), func(context.Context) error {
			starts = append(starts, time.Now())
			return nil
		})
		require.NoError(t, err)
	}

	require.Len(t, starts, 4)
	for i := 1; i < len(starts); i++ {
		assert.GreaterOrEqual(t, starts[i].Sub(starts[i-1]), interval)
	}
	assert.GreaterOrEqual(t, starts[3].Sub(starts[0]), 3*interval)
}

func TestGateFailedCallStillCounts(t *testing.T) {
	g := NewGate(time.Minute)
	g.now = func() time.Time { return time.Unix(1000, 0) }

	var slept time.Duration
	g.sleep = func(_ context.Context, d time.Duration) error {
		slept = d
		return nil
	}

	boom := errors.New("boom")
	err := g.Do(context.Background(), func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Zero(t, slept, "first call must not wait")

	// second call waits the full interval even though the first one failed
	_ = g.Do(context.Background(), func(context.Context) error { return nil })
	assert.Equal(t, time.Minute, slept)
}

func TestGateNoWaitOnFirstCall(t *testing.T) {
	g := NewGate(time.Hour)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = g.Do(context.Background(), func(context.Context) error { return nil })
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("first call should not be delayed")
	}
}

func TestGateCancelledDuringWait(t *testing.T) {
	g := NewGate(time.Hour)
	require.NoError(t, g.Do(context.Background(), func(context.Context) error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := g.Do(ctx, func(context.Context) error { ran = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestGateSerializesConcurrentCallers(t *testing.T) {
	const interval = 10 * time.Millisecond
	g := NewGate(interval)

	var (
		mu     sync.Mutex
		starts []time.Time
		wg     sync.WaitGroup
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.Do(context.Background(), func(context.Context) error {
				mu.Lock()
				starts = append(starts, time.Now())
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	require.Len(t, starts, 5)
	for i := 1; i < len(starts); i++ {
		assert.GreaterOrEqual(t, starts[i].Sub(starts[i-1]), interval)
	}
}
