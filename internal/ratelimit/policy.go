package ratelimit

import "time"

// LimitConfig allows at most Max requests in any sliding Window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Policy maps each scope to the limits that apply to it. A request must pass
// every limit of every scope it resolves to.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// PolicyBuilder assembles a Policy.
type PolicyBuilder struct {
	limits map[Scope][]LimitConfig
}

func NewPolicyBuilder() *PolicyBuilder {
	return &PolicyBuilder{limits: make(map[Scope][]LimitConfig)}
}

// AddLimit appends a limit for scope. Non-positive values are ignored.
func (b *PolicyBuilder) AddLimit(scope Scope, maxRequests int64, window time.Duration) *PolicyBuilder {
	if maxRequests <= 0 || window <= 0 {
		return b
	}

	b.limits[scope] = append(b.limits[scope], LimitConfig{Window: window, Max: maxRequests})

	return b
}

func (b *PolicyBuilder) Build() *Policy {
	limits := make(map[Scope][]LimitConfig, len(b.limits))
	for scope, l := range b.limits {
		limits[scope] = append([]LimitConfig(nil), l...)
	}

	return &Policy{Limits: limits}
}

// DefaultPolicy is applied to operations without their own limits.
func DefaultPolicy() *Policy {
	return NewPolicyBuilder().
		AddLimit(ScopeGlobal, 2000, time.Minute).
		AddLimit(ScopeRead, 1000, time.Minute).
		AddLimit(ScopeWrite, 60, time.Minute).
		AddLimit(ScopeWrite, 500, time.Hour).
		Build()
}
