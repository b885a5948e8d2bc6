// Package ratelimit bounds how often a device may perform an action.
package ratelimit

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/allisson/devicetrust/internal/errors"
)

// ErrRateLimitExceeded indicates the device exhausted its allowance for an action.
var ErrRateLimitExceeded = errors.Wrap(errors.ErrTooManyRequests, "rate limit exceeded")

// Policy allows Max actions per Window.
type Policy struct {
	Max    int
	Window time.Duration
}

func (p Policy) validate() error {
	if p.Max < 1 {
		return fmt.Errorf("max must be at least 1, got %d", p.Max)
	}
	if p.Window <= 0 {
		return fmt.Errorf("window must be positive, got %s", p.Window)
	}
	return nil
}

// ParsePolicies parses per-action overrides of the form
// "control:lock=10/1m,control:ptz=60/30s". Empty input yields no overrides.
func ParsePolicies(spec string) (map[string]Policy, error) {
	policies := make(map[string]Policy)
	for _, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		action, limit, ok := strings.Cut(item, "=")
		if !ok || strings.TrimSpace(action) == "" {
			return nil, fmt.Errorf("invalid rate limit policy %q: expected action=N/duration", item)
		}
		maxStr, windowStr, ok := strings.Cut(limit, "/")
		if !ok {
			return nil, fmt.Errorf("invalid rate limit policy %q: expected action=N/duration", item)
		}

		maxActions, err := strconv.Atoi(strings.TrimSpace(maxStr))
		if err != nil {
			return nil, fmt.Errorf("invalid rate limit policy %q: %w", item, err)
		}
		window, err := time.ParseDuration(strings.TrimSpace(windowStr))
		if err != nil {
			return nil, fmt.Errorf("invalid rate limit policy %q: %w", item, err)
		}

		policy := Policy{Max: maxActions, Window: window}
		if err := policy.validate(); err != nil {
			return nil, fmt.Errorf("invalid rate limit policy %q: %w", item, err)
		}
		policies[strings.TrimSpace(action)] = policy
	}
	return policies, nil
}

type policySet struct {
	fallback Policy
	actions  map[string]Policy
}

func (s policySet) forAction(action string) Policy {
	if policy, ok := s.actions[action]; ok {
		return policy
	}
	return s.fallback
}

func entryKey(deviceID, action string) string {
	return deviceID + "\x00" + action
}
