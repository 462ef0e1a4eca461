// Package container wires the service together with samber/do.
package container

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/events"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/health"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/serroba/shortlink/internal/ratelimit"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const openTimeout = 10 * time.Second

// Options are read from flags or SERVICE_* environment variables.
type Options struct {
	Port           int    `default:"8888"                  help:"Port to listen on"                                    short:"p"`
	BaseURL        string `default:"http://localhost:8888" help:"Public base URL used to build short URLs"`
	StorageURL     string `default:"memory://"             help:"Storage URL: memory://, postgres://, redis:// or sqlite://<path>" short:"s"`
	CodeLength     int    `default:"8"                     help:"Length of generated short codes"                      short:"c"`
	MaxAttempts    int    `default:"5"                     help:"Attempts to find a free short code"`
	StoreTimeoutMS int    `default:"3000"                  help:"Timeout for each storage call in milliseconds"`
	RedisAddr      string `default:""                      help:"Redis for rate limits and event streams; empty keeps both in process" short:"r"`
	LogFormat      string `default:"json"                  help:"Log format: json or console"`
	LogLevel       string `default:"info"                  help:"Log level: debug, info, warn or error"`
}

// RedisEnabled reports whether a shared Redis was configured.
func (o *Options) RedisEnabled() bool {
	return strings.TrimSpace(o.RedisAddr) != ""
}

// Redis wraps the shared client so the injector closes it on shutdown.
type Redis struct {
	*redis.Client
}

func (r *Redis) Shutdown() error {
	return r.Close()
}

// NewLogger builds a production (json) or development (console) zap logger.
func NewLogger(format, level string) (*zap.Logger, error) {
	var cfg zap.Config

	switch format {
	case "console":
		cfg = zap.NewDevelopmentConfig()
	case "json", "":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}

		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	return cfg.Build()
}

func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		return NewLogger(opts.LogFormat, opts.LogLevel)
	})
}

func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Redis, error) {
		opts := do.MustInvoke[*Options](i)
		if !opts.RedisEnabled() {
			return nil, errors.New("redis-addr is not set")
		}

		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})

		ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()

			return nil, fmt.Errorf("ping redis at %s: %w", opts.RedisAddr, err)
		}

		return &Redis{Client: client}, nil
	})
}

func StoragePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (store.Backend, error) {
		opts := do.MustInvoke[*Options](i)

		ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
		defer cancel()

		return store.Open(ctx, opts.StorageURL)
	})
}

func ServicePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)
		backend := do.MustInvoke[store.Backend](i)
		logger := do.MustInvoke[*zap.Logger](i)

		gen, err := shortener.NewGenerator(opts.CodeLength)
		if err != nil {
			return nil, err
		}

		return shortener.NewService(backend, gen, shortener.Config{
			BaseURL:      opts.BaseURL,
			MaxAttempts:  opts.MaxAttempts,
			StoreTimeout: time.Duration(opts.StoreTimeoutMS) * time.Millisecond,
		}, logger), nil
	})
}

func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (ratelimit.Store, error) {
		opts := do.MustInvoke[*Options](i)
		if !opts.RedisEnabled() {
			return store.NewRateLimitMemoryStore(), nil
		}

		client, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		return store.NewRateLimitRedisStore(client.Client), nil
	})

	do.Provide(i, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		return ratelimit.NewPolicyLimiter(do.MustInvoke[ratelimit.Store](i), ratelimit.DefaultPolicy()), nil
	})

	do.Provide(i, func(_ *do.Injector) (ratelimit.ScopeResolver, error) {
		return ratelimit.NewOperationScopeResolver(), nil
	})
}

// EventsPackage provides the lifecycle event publishers. Without Redis the
// events stay in process and the audit consumers run inside the server.
func EventsPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)
		wmLogger := messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i))

		if !opts.RedisEnabled() {
			return messaging.NewPublisherGroup(messaging.NewInProcess(wmLogger)), nil
		}

		client, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		publisher, err := messaging.NewRedisPublisher(client.Client, wmLogger)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (*events.Publishers, error) {
		return events.NewPublishers(do.MustInvoke[*messaging.PublisherGroup](i).Publisher()), nil
	})

	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.RedisEnabled() {
			return nil, errors.New("audit consumers run in the consumer binary when redis-addr is set")
		}

		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, ok := do.MustInvoke[*messaging.PublisherGroup](i).Publisher().(message.Subscriber)
		if !ok {
			return nil, errors.New("in-process publisher cannot subscribe")
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		events.RegisterAuditConsumers(group, subscriber, events.NewAuditor(logger), logger)

		return group, nil
	})
}

func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		opts := do.MustInvoke[*Options](i)

		api := handlers.NewAPI(router, "URL Shortener", "1.0.0")
		api.UseMiddleware(middleware.RequestLogger(logger))
		api.UseMiddleware(middleware.PolicyRateLimiter(
			api,
			do.MustInvoke[*ratelimit.PolicyLimiter](i),
			do.MustInvoke[ratelimit.ScopeResolver](i),
			logger,
		))

		linkHandler := handlers.NewLinkHandler(
			do.MustInvoke[*shortener.Service](i),
			do.MustInvoke[*events.Publishers](i),
			logger,
		)
		handlers.RegisterRoutes(api, linkHandler)

		var redisChecker health.Checker
		if opts.RedisEnabled() {
			redisChecker = health.NewRedisChecker(do.MustInvoke[*Redis](i).Client)
		}

		health.RegisterRoutes(api, health.NewHandler(do.MustInvoke[store.Backend](i), redisChecker))

		return api, nil
	})
}

// RegisterServer registers everything the HTTP server needs.
func RegisterServer(i *do.Injector, opts *Options) {
	do.ProvideValue(i, opts)
	LoggerPackage(i)
	RedisPackage(i)
	StoragePackage(i)
	ServicePackage(i)
	RateLimitPackage(i)
	EventsPackage(i)
	HTTPPackage(i)
}
