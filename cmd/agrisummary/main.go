package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/storm-data-agriculture/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/storm-data-agriculture/internal/adapter/kafka"
	"github.com/couchcryptid/storm-data-agriculture/internal/config"
	"github.com/couchcryptid/storm-data-agriculture/internal/observability"
	"github.com/couchcryptid/storm-data-agriculture/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	clock := clockwork.NewRealClock()
	summarizer := pipeline.NewSummarizer(clock, logger, metrics, pipeline.SourceKafka)

	p := pipeline.New(reader, summarizer, writer, logger, metrics, cfg.BatchSize)

	var opts []httpadapter.Option
	if cfg.SummaryAPIEnabled {
		api := pipeline.NewSummarizer(clock, logger, metrics, pipeline.SourceHTTP)
		opts = append(opts, httpadapter.WithSummaryAPI(api, cfg.HTTPMaxBodyBytes, metrics))
		logger.Info("summary api enabled", "max_body_bytes", cfg.HTTPMaxBodyBytes)
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start summary pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
