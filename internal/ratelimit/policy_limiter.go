package ratelimit

import (
	"context"
	"fmt"
)

// LimitExceeded describes the limit that denied a request. Scope is empty for
// per-endpoint limits.
type LimitExceeded struct {
	Scope  Scope
	Config LimitConfig
	Count  int64
}

// PolicyLimiter enforces rate limits based on a policy and resolved scopes.
type PolicyLimiter struct {
	store  Store
	policy *Policy
}

// NewPolicyLimiter creates a new policy-based rate limiter.
func NewPolicyLimiter(store Store, policy *Policy) *PolicyLimiter {
	return &PolicyLimiter{
		store:  store,
		policy: policy,
	}
}

// Allow records the request against the policy limits of each scope in turn
// and stops at the first one exceeded.
func (l *PolicyLimiter) Allow(ctx context.Context, clientKey string, scopes []Scope) (bool, *LimitExceeded, error) {
	for _, scope := range scopes {
		for _, limit := range l.policy.Limits[scope] {
			key := fmt.Sprintf("%s:%s:%d", clientKey, scope, limit.Window.Milliseconds())

			exceeded, err := l.record(ctx, key, limit)
			if err != nil {
				return false, nil, err
			}

			if exceeded != nil {
				exceeded.Scope = scope

				return false, exceeded, nil
			}
		}
	}

	return true, nil, nil
}

// AllowEndpoint applies an operation's own limits instead of the policy.
// Counters are keyed by the route template, so /{shortId} is one bucket per
// client no matter which id is requested.
func (l *PolicyLimiter) AllowEndpoint(
	ctx context.Context,
	clientKey, route string,
	limits []LimitConfig,
) (bool, *LimitExceeded, error) {
	for _, limit := range limits {
		key := fmt.Sprintf("%s:custom:%s:%d", clientKey, route, limit.Window.Milliseconds())

		exceeded, err := l.record(ctx, key, limit)
		if err != nil {
			return false, nil, err
		}

		if exceeded != nil {
			return false, exceeded, nil
		}
	}

	return true, nil, nil
}

func (l *PolicyLimiter) record(ctx context.Context, key string, limit LimitConfig) (*LimitExceeded, error) {
	count, err := l.store.Record(ctx, key, limit.Window)
	if err != nil {
		return nil, fmt.Errorf("record rate limit hit: %w", err)
	}

	if count > limit.Max {
		return &LimitExceeded{Config: limit, Count: count}, nil
	}

	return nil, nil
}
