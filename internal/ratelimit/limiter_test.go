package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/allisson/devicetrust/internal/config"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestSlidingWindowLimiter(t *testing.T) {
	t.Run("Success_AllowsUpToMaxWithinWindow", func(t *testing.T) {
		clock := newFakeClock()
		limiter := NewSlidingWindowLimiter(Policy{Max: 3, Window: time.Minute}, nil)
		limiter.now = clock.Now

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("lock-1", "control:lock"))
			clock.Advance(time.Second)
		}
		assert.False(t, limiter.Allow("lock-1", "control:lock"))

		// The window slides: the first hit leaves it one minute after it was recorded.
		clock.Advance(57 * time.Second)
		assert.True(t, limiter.Allow("lock-1", "control:lock"))
		assert.False(t, limiter.Allow("lock-1", "control:lock"))
	})

	t.Run("Success_DenialsDoNotConsumeAllowance", func(t *testing.T) {
		clock := newFakeClock()
		limiter := NewSlidingWindowLimiter(Policy{Max: 1, Window: time.Minute}, nil)
		limiter.now = clock.Now

		assert.True(t, limiter.Allow("lock-1", "control:lock"))
		for i := 0; i < 5; i++ {
			assert.False(t, limiter.Allow("lock-1", "control:lock"))
		}
		clock.Advance(time.Minute)
		assert.True(t, limiter.Allow("lock-1", "control:lock"))
	})

	t.Run("Success_PerActionOverride", func(t *testing.T) {
		limiter := NewSlidingWindowLimiter(
			Policy{Max: 100, Window: time.Minute},
			map[string]Policy{"control:lock": {Max: 1, Window: time.Minute}},
		)

		assert.True(t, limiter.Allow("lock-1", "control:lock"))
		assert.False(t, limiter.Allow("lock-1", "control:lock"))
		assert.True(t, limiter.Allow("lock-1", "read:sensor"))
	})

	t.Run("Success_DevicesAndActionsAreIndependent", func(t *testing.T) {
		limiter := NewSlidingWindowLimiter(Policy{Max: 1, Window: time.Minute}, nil)

		assert.True(t, limiter.Allow("lock-1", "control:lock"))
		assert.True(t, limiter.Allow("lock-2", "control:lock"))
		assert.True(t, limiter.Allow("lock-1", "read:access"))
	})

	t.Run("Success_ConcurrentCallsNeverExceedMax", func(t *testing.T) {
		limiter := NewSlidingWindowLimiter(Policy{Max: 10, Window: time.Hour}, nil)

		var allowed atomic.Int64
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("lock-1", "control:lock") {
					allowed.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int64(10), allowed.Load())
	})

	t.Run("Success_SweepRemovesIdleEntries", func(t *testing.T) {
		clock := newFakeClock()
		limiter := NewSlidingWindowLimiter(Policy{Max: 1, Window: time.Minute}, nil)
		limiter.now = clock.Now

		for i := 0; i < 5; i++ {
			limiter.Allow(fmt.Sprintf("dev-%d", i), "read:sensor")
		}
		assert.Equal(t, 5, limiter.Len())

		limiter.Sweep()
		assert.Equal(t, 5, limiter.Len())

		clock.Advance(time.Minute)
		limiter.Sweep()
		assert.Equal(t, 0, limiter.Len())
	})

	t.Run("Success_SweepKeepsActiveWindows", func(t *testing.T) {
		clock := newFakeClock()
		limiter := NewSlidingWindowLimiter(Policy{Max: 1, Window: time.Minute}, nil)
		limiter.now = clock.Now

		assert.True(t, limiter.Allow("lock-1", "control:lock"))
		clock.Advance(30 * time.Second)
		limiter.Sweep()
		assert.False(t, limiter.Allow("lock-1", "control:lock"))
	})
}

func TestTokenBucketLimiter(t *testing.T) {
	t.Run("Success_BurstThenRefill", func(t *testing.T) {
		clock := newFakeClock()
		limiter := NewTokenBucketLimiter(Policy{Max: 2, Window: time.Minute}, nil)
		limiter.now = clock.Now

		assert.True(t, limiter.Allow("cam-1", "control:ptz"))
		assert.True(t, limiter.Allow("cam-1", "control:ptz"))
		assert.False(t, limiter.Allow("cam-1", "control:ptz"))

		clock.Advance(30 * time.Second)
		assert.True(t, limiter.Allow("cam-1", "control:ptz"))
		assert.False(t, limiter.Allow("cam-1", "control:ptz"))
	})

	t.Run("Success_MaxExceedsWindowNanoseconds", func(t *testing.T) {
		clock := newFakeClock()
		limiter := NewTokenBucketLimiter(Policy{Max: 2000, Window: time.Microsecond}, nil)
		limiter.now = clock.Now

		for i := 0; i < 2000; i++ {
			require.True(t, limiter.Allow("cam-1", "control:ptz"))
		}
		assert.False(t, limiter.Allow("cam-1", "control:ptz"))

		clock.Advance(time.Microsecond)
		assert.True(t, limiter.Allow("cam-1", "control:ptz"))
	})

	t.Run("Success_SweepRemovesFullBuckets", func(t *testing.T) {
		clock := newFakeClock()
		limiter := NewTokenBucketLimiter(Policy{Max: 2, Window: time.Minute}, nil)
		limiter.now = clock.Now

		limiter.Allow("cam-1", "control:ptz")
		limiter.Sweep()
		_, ok := limiter.entries.Load(entryKey("cam-1", "control:ptz"))
		assert.True(t, ok)

		clock.Advance(time.Minute)
		limiter.Sweep()
		_, ok = limiter.entries.Load(entryKey("cam-1", "control:ptz"))
		assert.False(t, ok)
	})
}

func TestNewLimiter(t *testing.T) {
	cfg := &config.Config{
		RateLimitStrategy:   StrategySlidingWindow,
		RateLimitMaxActions: 30,
		RateLimitWindow:     time.Minute,
		RateLimitPolicies:   "control:lock=10/1m",
	}

	t.Run("Success_SlidingWindow", func(t *testing.T) {
		limiter, err := NewLimiter(cfg)
		require.NoError(t, err)
		assert.IsType(t, &SlidingWindowLimiter{}, limiter)
	})

	t.Run("Success_TokenBucket", func(t *testing.T) {
		tokenBucket := *cfg
		tokenBucket.RateLimitStrategy = StrategyTokenBucket
		limiter, err := NewLimiter(&tokenBucket)
		require.NoError(t, err)
		assert.IsType(t, &TokenBucketLimiter{}, limiter)
	})

	t.Run("Error_UnknownStrategy", func(t *testing.T) {
		unknown := *cfg
		unknown.RateLimitStrategy = "leaky-bucket"
		_, err := NewLimiter(&unknown)
		assert.Error(t, err)
	})

	t.Run("Error_BadPolicies", func(t *testing.T) {
		bad := *cfg
		bad.RateLimitPolicies = "control:lock=lots"
		_, err := NewLimiter(&bad)
		assert.Error(t, err)
	})

	t.Run("Error_ZeroDefault", func(t *testing.T) {
		zero := *cfg
		zero.RateLimitMaxActions = 0
		_, err := NewLimiter(&zero)
		assert.Error(t, err)
	})
}

func TestRunSweeper(t *testing.T) {
	defer goleak.VerifyNone(t)

	limiter := NewSlidingWindowLimiter(Policy{Max: 1, Window: time.Millisecond}, nil)
	limiter.Allow("lock-1", "control:lock")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunSweeper(ctx, limiter, time.Millisecond)
	}()

	assert.Eventually(t, func() bool { return limiter.Len() == 0 }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
