package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"oficina/internal/api"
	"oficina/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reports over HTTP",
	Long: `Start an HTTP server exposing the reports as JSON:

  GET  /invoices?status=...
  GET  /invoices/:id/balance
  GET  /invoices/:id/history
  POST /invoices/:id/payments/validate
  GET  /reports/monthly
  GET  /reports/ledger?from=YYYY-MM-DD&to=YYYY-MM-DD
  GET  /reports/loyalty?window=&sort=&q=&limit=

Records are reloaded on every request.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: HTTP_ADDR or :8080)")
	serveCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "Time allowed for in-flight requests on shutdown")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	// Get flags
	addr, _ := cmd.Flags().GetString("addr")
	shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")

	svc, cleanup, err := newReportService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if addr == "" {
		addr = appConfig.HTTPAddr
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(svc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}
