package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/container"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		injector := do.New()
		container.RegisterServer(injector, options)

		logger := do.MustInvoke[*zap.Logger](injector)

		var (
			server *http.Server
			cancel context.CancelFunc = func() {}
		)

		hooks.OnStart(func() {
			router := do.MustInvoke[*chi.Mux](injector)

			// Invoke API to trigger route registration
			_ = do.MustInvoke[huma.API](injector)

			if !options.RedisEnabled() {
				var ctx context.Context
				ctx, cancel = context.WithCancel(context.Background())

				group := do.MustInvoke[*messaging.ConsumerGroup](injector)
				if err := group.Start(ctx); err != nil {
					logger.Fatal("failed to start audit consumers", zap.Error(err))
				}
			}

			server = &http.Server{
				Addr:              fmt.Sprintf(":%d", options.Port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			logger.Info("server starting",
				zap.Int("port", options.Port),
				zap.String("base_url", options.BaseURL),
				zap.Bool("redis", options.RedisEnabled()),
			)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			logger.Info("shutting down")

			ctx, stop := context.WithTimeout(context.Background(), 30*time.Second)
			defer stop()

			if server != nil {
				if err := server.Shutdown(ctx); err != nil {
					logger.Error("server shutdown error", zap.Error(err))
				}
			}

			cancel()

			if err := injector.Shutdown(); err != nil {
				logger.Error("service shutdown error", zap.Error(err))
			}

			logger.Info("shutdown complete")
		})
	})

	cli.Root().AddCommand(migrateCommand(), shortenCommand())

	cli.Run()
}

// newCLIInjector wires only what the one-shot commands need.
func newCLIInjector(options *container.Options) *do.Injector {
	injector := do.New()
	do.ProvideValue(injector, options)
	container.LoggerPackage(injector)
	container.StoragePackage(injector)
	container.ServicePackage(injector)

	return injector
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the storage schema and exit",
		Run: humacli.WithOptions(func(cmd *cobra.Command, _ []string, options *container.Options) {
			exitOnError(cmd, "migrate", runMigrate(options, cmd.OutOrStdout()))
		}),
	}
}

func shortenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shorten",
		Short: "Shorten a URL against the configured storage and print the short URL",
		Run: humacli.WithOptions(func(cmd *cobra.Command, _ []string, options *container.Options) {
			longURL, _ := cmd.Flags().GetString("url")

			exitOnError(cmd, "shorten", runShorten(options, longURL, cmd.OutOrStdout()))
		}),
	}

	cmd.Flags().String("url", "", "URL to shorten")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

// exit is replaced in tests.
var exit = os.Exit

func exitOnError(cmd *cobra.Command, name string, err error) {
	if err == nil {
		return
	}

	cmd.PrintErrln(name+":", err)
	exit(1)
}

func runMigrate(options *container.Options, out io.Writer) error {
	injector := newCLIInjector(options)
	defer func() { _ = injector.Shutdown() }()

	if _, err := do.Invoke[store.Backend](injector); err != nil {
		return err
	}

	_, err := fmt.Fprintln(out, "storage ready:", redactScheme(options.StorageURL))

	return err
}

func runShorten(options *container.Options, longURL string, out io.Writer) error {
	injector := newCLIInjector(options)
	defer func() { _ = injector.Shutdown() }()

	svc, err := do.Invoke[*shortener.Service](injector)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	link, err := svc.Shorten(ctx, longURL)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, link.ShortURL)

	return err
}

// redactScheme keeps credentials in storage URLs out of the output.
func redactScheme(storageURL string) string {
	scheme, _, found := strings.Cut(storageURL, "://")
	if !found {
		return storageURL
	}

	return scheme + "://..."
}
