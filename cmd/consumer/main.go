package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spacesedan/sentidash/config"
	"github.com/spacesedan/sentidash/internal/analysis"
	"github.com/spacesedan/sentidash/internal/bootstrap"
	"github.com/spacesedan/sentidash/internal/clients/kafka_client"
	"github.com/spacesedan/sentidash/internal/consumers"
	"github.com/spacesedan/sentidash/internal/logging"
	"github.com/spacesedan/sentidash/internal/monitoring"
)

func main() {
	config.LoadEnv(config.Env())
	cfg, err := config.Load()
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kafkaCfg := kafka_client.KafkaConfig{
		Broker:       cfg.Kafka.Broker,
		GroupID:      cfg.Kafka.GroupID,
		RequestTopic: cfg.Kafka.RequestTopic,
		ResultsTopic: cfg.Kafka.ResultsTopic,
	}.WithDefaults()

	var producer *kafka_client.Producer
	for {
		producer, err = kafka_client.NewProducer(kafkaCfg)
		if err == nil {
			break
		}

		slog.Warn("Kafka init failed, retrying...", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
	defer producer.Close()

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	go serveMetrics(ctx, cfg.HTTPAddr, metrics.Handler())

	analyzer, err := bootstrap.NewAnalyzer(ctx, cfg, analysis.WithObserver(metrics))
	if err != nil {
		slog.Error("[Main] Failed to build analyzer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dash, store := bootstrap.NewDashboard(cfg)
	if store != nil {
		defer store.Close()
	}

	worker := consumers.NewAnalysisConsumer(analyzer, producer, kafkaCfg.ResultsTopic,
		consumers.WithRecorder(dash),
		consumers.WithWorkerObserver(metrics))

	kafka_client.RegisterConsumer(kafkaCfg.RequestTopic, worker.Run)

	if err := kafka_client.StartConsumer(ctx, kafkaCfg, kafkaCfg.RequestTopic); err != nil {
		slog.Error("[Main] Failed to start consumer",
			slog.String("error", err.Error()))
	}
	slog.Info("[Main] Analysis worker stopped")
}

// serveMetrics exposes /metrics until ctx is done.
func serveMetrics(ctx context.Context, addr string, h http.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Warn("[Main] Metrics server stopped", slog.String("error", err.Error()))
	}
}
