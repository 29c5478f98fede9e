package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/phone-roster/internal/http/handlers/roster"
	"github.com/aanand-mishra/phone-roster/internal/http/middleware"
)

// NewServeCommand runs the HTTP API until SIGINT/SIGTERM.
//
// STARTUP SEQUENCE:
//  1. Load configuration and initialise the logger
//  2. Open (repairing if needed) and seed the store
//  3. Register all HTTP routes
//  4. Serve in a separate goroutine
//  5. Block until an OS signal arrives, then shut down gracefully
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// ctx is cancelled on Ctrl+C (SIGINT) or `kill` (SIGTERM).
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx, cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			router := http.NewServeMux()
			roster.Register(router, a.svc)

			server := &http.Server{
				Addr:    a.cfg.HTTPServer.Addr,
				Handler: middleware.Logging(a.log, router),

				// Timeouts so a slow client cannot hold a connection open.
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 10 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.Info("server started", slog.String("address", server.Addr))

				// ListenAndServe returns http.ErrServerClosed after Shutdown;
				// that is the expected way out.
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					a.log.Error("server encountered an error", slog.String("error", err.Error()))
					return err
				}
				return nil
			case <-ctx.Done():
			}

			a.log.Info("shutdown signal received, stopping server...")

			// Give in-flight submissions five seconds to finish.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				a.log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
				return err
			}

			a.log.Info("server stopped gracefully")
			return nil
		},
	}
}
