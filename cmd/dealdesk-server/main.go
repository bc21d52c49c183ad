// Command dealdesk-server serves the DealDesk scheduling API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dealdesk/dealdesk/pkg/access"
	"github.com/dealdesk/dealdesk/pkg/audit"
	"github.com/dealdesk/dealdesk/pkg/config"
	"github.com/dealdesk/dealdesk/pkg/meetlink"
	"github.com/dealdesk/dealdesk/pkg/store"
)

var (
	configPath = flag.String("config", "/etc/dealdesk/config.yaml", "Path to config file")
	listen     = flag.String("listen", "", "HTTP listen address (overrides config if set)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("DealDesk Server v1.2.0")
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	level := slog.LevelInfo
	if *verbose || cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	recorder := audit.New(st, logger)

	gate := access.NewGate(func(ctx context.Context) ([]access.Permission, error) {
		rows, err := st.PagePermissions(ctx)
		if err != nil {
			return nil, err
		}
		perms := make([]access.Permission, len(rows))
		for i, r := range rows {
			perms[i] = access.Permission(r)
		}
		return perms, nil
	}, logger, access.WithTTL(cfg.PermissionTTL()), access.WithAudit(recorder))

	var links *meetlink.Client
	if cfg.MeetLink.Endpoint != "" {
		links = meetlink.New(cfg.MeetLink.Endpoint, cfg.MeetLink.Token, logger)
	}

	srv := &server{
		store:   st,
		gate:    gate,
		audit:   recorder,
		links:   links,
		logger:  logger,
		limiter: newRateLimiter(cfg.RateLimitPerMinute, time.Minute),
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.MaintenanceCron, func() {
		maintain(ctx, st, gate, cfg.RetentionDays, logger)
	}); err != nil {
		logger.Error("invalid maintenance cron expression", "cron", cfg.MaintenanceCron, "error", err)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	srv.routes()

	httpSrv := &http.Server{
		Addr:              cfg.Listen,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("signal received, shutting down", "signal", sig.String())
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = httpSrv.Shutdown(shutdownCtx)
		cancel()
	}()

	logger.Info("starting DealDesk server", "addr", cfg.Listen)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// maintain runs the periodic jobs: keep the permission cache warm and trim
// old security events.
func maintain(ctx context.Context, st *store.Store, gate *access.Gate, retentionDays int, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if err := gate.Refresh(ctx); err != nil {
		logger.Warn("permission cache refresh failed", "error", err)
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	purged, err := st.PurgeSecurityEventsBefore(ctx, cutoff)
	if err != nil {
		logger.Warn("security event purge failed", "error", err)
		return
	}
	if purged > 0 {
		logger.Info("purged security events", "count", purged, "cutoff", cutoff)
	}
}
