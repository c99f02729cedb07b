package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/dupliremover/internal/api"
	"github.com/fenilsonani/dupliremover/internal/api/middleware"
	"github.com/fenilsonani/dupliremover/internal/engine"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  `Serves the scan and deletion API until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if listenAddr != "" {
			cfg.Server.Addr = listenAddr
		}

		logMgr, logger := setupLogging(cfg)
		defer logMgr.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		bus, stopBus := startBus(cfg, logger)
		defer stopBus()

		eng, err := engine.New(cfg, logger, bus)
		if err != nil {
			return fmt.Errorf("failed to create engine: %w", err)
		}

		var limiter *middleware.RateLimiter
		if cfg.Server.ScanRatePerMinute > 0 {
			limiter = middleware.NewRateLimiter(ctx, cfg.Server.ScanRatePerMinute, cfg.Server.ScanBurst)
		}

		router := api.NewRouter(api.RouterDeps{
			Service:        eng,
			Logger:         logger.With("component", "http"),
			AllowedOrigins: cfg.Server.AllowedOrigins,
			ScanLimiter:    limiter,
		})

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           router.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("http server listening", "addr", cfg.Server.Addr)
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
		case <-ctx.Done():
			logger.Info("shutting down")
		}

		timeout := cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown failed", "error", err)
		}
		return eng.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (overrides server.addr)")
}
