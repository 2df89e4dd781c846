package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spacesedan/sentidash/config"
	"github.com/spacesedan/sentidash/internal/analysis"
	"github.com/spacesedan/sentidash/internal/bootstrap"
	"github.com/spacesedan/sentidash/internal/logging"
	"github.com/spacesedan/sentidash/internal/monitoring"
	"github.com/spacesedan/sentidash/internal/server"
)

func main() {
	config.LoadEnv(config.Env())
	cfg, err := config.Load()
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())

	analyzer, err := bootstrap.NewAnalyzer(ctx, cfg, analysis.WithObserver(metrics))
	if err != nil {
		slog.Error("[Main] Failed to build analyzer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dash, store := bootstrap.NewDashboard(cfg)
	opts := []server.Option{server.WithMetricsHandler(metrics.Handler())}
	if store != nil {
		defer store.Close()
		storeHealthy := &atomic.Bool{}
		go monitoring.MonitorStoreHealth(ctx, store, storeHealthy, metrics, time.Second*monitoring.HEALTHCHECK_TIMER)
		opts = append(opts, server.WithStoreHealth(storeHealthy))
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.New(analyzer, dash, opts...).Router(),
	}

	go func() {
		slog.Info("[Main] HTTP server listening",
			slog.String("addr", cfg.HTTPAddr),
			slog.String("scorer", analyzer.ScorerName()),
			slog.Bool("degraded", analyzer.Degraded()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] HTTP server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("[Main] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] Graceful shutdown failed", slog.String("error", err.Error()))
	}
	slog.Info("[Main] Dashboard server stopped")
}
