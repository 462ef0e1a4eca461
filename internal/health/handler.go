package health

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/ratelimit"
)

const (
	MessageRunning = "URL Shortener API is running"

	StatusOK       = "ok"
	StatusDegraded = "degraded"

	healthy   = "healthy"
	unhealthy = "unhealthy"

	pingTimeout = 2 * time.Second
)

// Checker defines the interface for checking a dependency.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker adapts redis.Client to Checker interface.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Handler handles health check operations.
type Handler struct {
	storage Checker
	redis   Checker
}

// NewHandler creates a new health handler. redis may be nil when the service
// runs without Redis.
func NewHandler(storage, redis Checker) *Handler {
	return &Handler{storage: storage, redis: redis}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		handlers.Result
		Status  string `doc:"ok or degraded"                  json:"status"`
		Storage string `doc:"healthy or unhealthy"            json:"storage"`
		Redis   string `doc:"healthy or unhealthy, if in use" json:"redis,omitempty"`
	}
}

// Check reports the service and its dependencies. It always answers 200;
// a failing dependency only degrades the status.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Success = true
	resp.Body.Message = MessageRunning
	resp.Body.Status = StatusOK
	resp.Body.Storage = probe(ctx, h.storage)

	if h.redis != nil {
		resp.Body.Redis = probe(ctx, h.redis)
	}

	if resp.Body.Storage == unhealthy || resp.Body.Redis == unhealthy {
		resp.Body.Status = StatusDegraded
	}

	return resp, nil
}

func probe(ctx context.Context, c Checker) string {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := c.Ping(ctx); err != nil {
		return unhealthy
	}

	return healthy
}

// RegisterRoutes registers health check routes. Health checks are not rate limited.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      "GET",
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
		},
	}, h.Check)
}
