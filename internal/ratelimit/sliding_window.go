package ratelimit

import (
	"sync"
	"time"
)

// windowEntry holds the attempt log of one (device, action) pair. A dead entry was
// removed by Sweep and must not record new attempts.
type windowEntry struct {
	mu     sync.Mutex
	hits   []time.Time
	window time.Duration
	dead   bool
}

// prune drops hits at or before cutoff.
func (e *windowEntry) prune(cutoff time.Time) {
	i := 0
	for i < len(e.hits) && !e.hits[i].After(cutoff) {
		i++
	}
	if i > 0 {
		e.hits = append(e.hits[:0], e.hits[i:]...)
	}
}

// SlidingWindowLimiter allows at most Policy.Max attempts in any trailing Policy.Window.
type SlidingWindowLimiter struct {
	policies policySet
	entries  sync.Map // entryKey -> *windowEntry
	now      func() time.Time
}

// NewSlidingWindowLimiter creates a sliding window limiter. Actions without an
// override use fallback.
func NewSlidingWindowLimiter(fallback Policy, overrides map[string]Policy) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		policies: policySet{fallback: fallback, actions: overrides},
		now:      time.Now,
	}
}

// Allow implements Limiter.
func (l *SlidingWindowLimiter) Allow(deviceID, action string) bool {
	policy := l.policies.forAction(action)
	key := entryKey(deviceID, action)

	for {
		value, ok := l.entries.Load(key)
		if !ok {
			value, _ = l.entries.LoadOrStore(key, &windowEntry{window: policy.Window})
		}
		entry := value.(*windowEntry)

		entry.mu.Lock()
		if entry.dead {
			entry.mu.Unlock()
			continue
		}

		now := l.now()
		entry.prune(now.Add(-policy.Window))
		allowed := len(entry.hits) < policy.Max
		if allowed {
			entry.hits = append(entry.hits, now)
		}
		entry.mu.Unlock()
		return allowed
	}
}

// Sweep implements Limiter. Entries whose window is empty are removed.
func (l *SlidingWindowLimiter) Sweep() {
	now := l.now()
	l.entries.Range(func(key, value any) bool {
		entry := value.(*windowEntry)

		entry.mu.Lock()
		entry.prune(now.Add(-entry.window))
		if len(entry.hits) == 0 {
			entry.dead = true
			l.entries.CompareAndDelete(key, entry)
		}
		entry.mu.Unlock()
		return true
	})
}

// Len returns the number of tracked (device, action) pairs.
func (l *SlidingWindowLimiter) Len() int {
	n := 0
	l.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
