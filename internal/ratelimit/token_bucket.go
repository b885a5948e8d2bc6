package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucketEntry struct {
	mu         sync.Mutex
	limiter    *rate.Limiter
	window     time.Duration
	lastAccess time.Time
	dead       bool
}

// TokenBucketLimiter refills Policy.Max tokens evenly over Policy.Window and allows
// bursts of up to Policy.Max.
type TokenBucketLimiter struct {
	policies policySet
	entries  sync.Map // entryKey -> *bucketEntry
	now      func() time.Time
}

// NewTokenBucketLimiter creates a token bucket limiter. Actions without an override
// use fallback.
func NewTokenBucketLimiter(fallback Policy, overrides map[string]Policy) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		policies: policySet{fallback: fallback, actions: overrides},
		now:      time.Now,
	}
}

func newBucket(policy Policy) *bucketEntry {
	// Window/Max can truncate to 0, which rate.Every maps to rate.Inf.
	refill := rate.Limit(float64(policy.Max) / policy.Window.Seconds())
	return &bucketEntry{
		limiter: rate.NewLimiter(refill, policy.Max),
		window:  policy.Window,
	}
}

// Allow implements Limiter.
func (l *TokenBucketLimiter) Allow(deviceID, action string) bool {
	key := entryKey(deviceID, action)

	for {
		value, ok := l.entries.Load(key)
		if !ok {
			value, _ = l.entries.LoadOrStore(key, newBucket(l.policies.forAction(action)))
		}
		entry := value.(*bucketEntry)

		entry.mu.Lock()
		if entry.dead {
			entry.mu.Unlock()
			continue
		}
		now := l.now()
		entry.lastAccess = now
		allowed := entry.limiter.AllowN(now, 1)
		entry.mu.Unlock()
		return allowed
	}
}

// Sweep implements Limiter. A bucket idle for a full window is back at capacity and
// is indistinguishable from a new one, so it is removed.
func (l *TokenBucketLimiter) Sweep() {
	now := l.now()
	l.entries.Range(func(key, value any) bool {
		entry := value.(*bucketEntry)

		entry.mu.Lock()
		if now.Sub(entry.lastAccess) >= entry.window {
			entry.dead = true
			l.entries.CompareAndDelete(key, entry)
		}
		entry.mu.Unlock()
		return true
	})
}
