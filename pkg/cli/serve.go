package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/cli/config"
	httpctrl "github.com/RafieAmandio/Teacher-RAG/pkg/controller/http"
	"github.com/RafieAmandio/Teacher-RAG/pkg/service/worker"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/errutil"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 30 * time.Second

func cmdServe(version string) *cli.Command {
	var addr string
	var userHeader string
	var maxUploadSize int64
	var backend backendConfig
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("TEACHER_RAG_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "user-header",
			Usage:       "Trusted request header carrying the caller ID, set by the fronting auth proxy",
			Value:       httpctrl.DefaultUserHeader,
			Sources:     cli.EnvVars("TEACHER_RAG_USER_HEADER"),
			Destination: &userHeader,
		},
		&cli.Int64Flag{
			Name:        "max-upload-size",
			Usage:       "Maximum upload size in bytes",
			Value:       httpctrl.DefaultMaxUploadSize,
			Sources:     cli.EnvVars("TEACHER_RAG_MAX_UPLOAD_SIZE"),
			Destination: &maxUploadSize,
		},
	}

	// Add shared config flags
	flags = append(flags, backend.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			flushSentry, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer flushSentry()

			rt, err := backend.open(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			// Expired jobs are already hidden from reads; the sweeper only frees memory
			sweeper := worker.NewJobSweeper(rt.uc.JobRegistry(), rt.pipeline.Ingestion.SweepInterval.Duration)
			if err := sweeper.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start job sweeper")
			}

			server := &http.Server{
				Addr: addr,
				Handler: httpctrl.New(rt.uc,
					httpctrl.WithUserHeader(userHeader),
					httpctrl.WithMaxUploadSize(maxUploadSize),
				),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				sweeper.Stop()
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				// Stop accepting uploads before draining running ingestions
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				if err := rt.uc.Wait(shutdownCtx); err != nil {
					errutil.Handle(ctx, err, "ingestion jobs still running at shutdown")
				}
				sweeper.Stop()

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
