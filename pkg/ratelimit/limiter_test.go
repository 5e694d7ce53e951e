package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedDelayWaits(t *testing.T) {
	var slept []time.Duration
	f := NewFixedDelay(time.Second)
	f.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	require.NoError(t, f.Wait(context.Background()))
	require.NoError(t, f.Wait(context.Background()))
	assert.Equal(t, []time.Duration{time.Second, time.Second}, slept)
	assert.Equal(t, time.Second, f.Delay())
}

func TestFixedDelayZero(t *testing.T) {
	f := NewFixedDelay(0)
	start := time.Now()
	require.NoError(t, f.Wait(context.Background()))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSleepElapses(t *testing.T) {
	start := time.Now()
	require.NoError(t, Sleep(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestRateLimiter(t *testing.T) {
	r := NewRateLimiter(20)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Wait(ctx))
	}
	// one burst token then two waits of 50ms each
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestRateLimiterUnlimited(t *testing.T) {
	r := NewRateLimiter(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, r.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestNop(t *testing.T) {
	var l Limiter = Nop{}
	assert.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
}
