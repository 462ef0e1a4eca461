package ratelimit

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Scope groups requests that share rate limits.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeRead   Scope = "read"
	ScopeWrite  Scope = "write"
)

// MetadataKey is the huma operation metadata key holding an EndpointConfig.
const MetadataKey = "rateLimit"

// EndpointConfig overrides the policy for one operation.
//
// Disabled skips rate limiting. Non-empty Limits replace the policy entirely
// and are counted per route template, so Scope is ignored. Otherwise Scope,
// when set, replaces the method-based read/write classification.
type EndpointConfig struct {
	Scope    Scope
	Limits   []LimitConfig
	Disabled bool
}

// ScopeResolver determines which scopes apply to a given request.
type ScopeResolver interface {
	Resolve(ctx huma.Context) []Scope
}

// MethodScopeResolver treats safe methods as reads and everything else as writes.
type MethodScopeResolver struct{}

func NewMethodScopeResolver() *MethodScopeResolver {
	return &MethodScopeResolver{}
}

func (r *MethodScopeResolver) Resolve(ctx huma.Context) []Scope {
	switch ctx.Method() {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return []Scope{ScopeGlobal, ScopeRead}
	default:
		return []Scope{ScopeGlobal, ScopeWrite}
	}
}

// OperationScopeResolver honours EndpointConfig.Scope and otherwise falls
// back to MethodScopeResolver.
type OperationScopeResolver struct {
	fallback *MethodScopeResolver
}

func NewOperationScopeResolver() *OperationScopeResolver {
	return &OperationScopeResolver{fallback: NewMethodScopeResolver()}
}

func (r *OperationScopeResolver) Resolve(ctx huma.Context) []Scope {
	if cfg := GetEndpointConfig(ctx); cfg != nil && cfg.Scope != "" {
		return []Scope{ScopeGlobal, cfg.Scope}
	}

	return r.fallback.Resolve(ctx)
}

// GetEndpointConfig returns the operation's EndpointConfig, or nil if it has none.
func GetEndpointConfig(ctx huma.Context) *EndpointConfig {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}
