package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/allisson/devicetrust/internal/config"
)

// Strategies accepted by NewLimiter.
const (
	StrategySlidingWindow = "sliding-window"
	StrategyTokenBucket   = "token-bucket"
)

// Limiter decides whether a device may perform an action now. Implementations are
// safe for concurrent use and never serialize distinct devices.
type Limiter interface {
	// Allow records an attempt and reports whether it fits the action's policy.
	Allow(deviceID, action string) bool

	// Sweep drops per-device state that no longer affects any decision.
	Sweep()
}

// NewLimiter builds the limiter selected by cfg.RateLimitStrategy.
func NewLimiter(cfg *config.Config) (Limiter, error) {
	fallback := Policy{Max: cfg.RateLimitMaxActions, Window: cfg.RateLimitWindow}
	if err := fallback.validate(); err != nil {
		return nil, fmt.Errorf("invalid default rate limit policy: %w", err)
	}

	overrides, err := ParsePolicies(cfg.RateLimitPolicies)
	if err != nil {
		return nil, err
	}

	switch cfg.RateLimitStrategy {
	case StrategySlidingWindow, "":
		return NewSlidingWindowLimiter(fallback, overrides), nil
	case StrategyTokenBucket:
		return NewTokenBucketLimiter(fallback, overrides), nil
	default:
		return nil, fmt.Errorf("unsupported rate limit strategy: %s", cfg.RateLimitStrategy)
	}
}

// RunSweeper calls l.Sweep every interval until ctx is done.
func RunSweeper(ctx context.Context, l Limiter, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.Sweep()
		}
	}
}
