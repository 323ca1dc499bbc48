package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/nappsnasarawa/levyreceipt/httpapi"
	"github.com/nappsnasarawa/levyreceipt/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve receipt downloads over HTTP",
	Long: `Serve receipts on HTTP_ADDR:

  GET  /receipts/{receiptNumber or reference}  look up on the portal and download
  POST /receipts                               render a posted PaymentRecord
  GET  /healthz
  GET  /metrics                                Prometheus metrics

Receipt routes answer 429 beyond HTTP_RENDER_RATE builds per second
(burst HTTP_RENDER_BURST); 0 disables the limit.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (default HTTP_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("http")
	ctx, cancel := signalContext()
	defer cancel()

	r, err := newRenderer(cmd)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app := &httpapi.App{
		Renderer: r,
		Logger:   log,
		Metrics:  httpapi.NewMetrics(reg),
		Limiter:  httpapi.NewLimiter(cfg.HTTPRenderRate, cfg.HTTPRenderBurst),
	}
	if cfg.PortalBaseURL != "" {
		client, closeFn, err := newPortal(ctx)
		if err != nil {
			return err
		}
		defer closeFn()
		app.Finder = client
	} else {
		log.Warn().Msg("PORTAL_BASE_URL not set; receipt lookup disabled")
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.HTTPAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
