package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/kataribe-dev/kataribe/pkg/cli/config"
	httpctrl "github.com/kataribe-dev/kataribe/pkg/controller/http"
	"github.com/kataribe-dev/kataribe/pkg/service/enrich"
	"github.com/kataribe-dev/kataribe/pkg/service/gateway"
	"github.com/kataribe-dev/kataribe/pkg/usecase"
	"github.com/kataribe-dev/kataribe/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var quotaCfg config.Quota

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("KATARIBE_ADDR"),
			Destination: &addr,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, quotaCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}

			ucOpts := []usecase.Option{
				usecase.WithGateway(gateway.New(llmClient)),
			}

			if llmClient != nil {
				enricher, err := enrich.New(llmClient)
				if err != nil {
					return goerr.Wrap(err, "failed to initialize enrichment service")
				}
				ucOpts = append(ucOpts, usecase.WithEnricher(enricher))
				logging.Default().Info("Generation enabled", "gemini", geminiCfg.LogAttrs())
			} else {
				logging.Default().Warn("Gemini project not configured, chat will answer with a configuration notice")
			}

			limiter := quotaCfg.Configure(ctx)
			ucOpts = append(ucOpts, usecase.WithLimiter(limiter))
			defer func() {
				if err := limiter.Close(); err != nil {
					logging.Default().Error("failed to close quota limiter", "error", err.Error())
				}
			}()

			uc := usecase.New(repo, ucOpts...)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"quota_backend", limiter.State(),
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
