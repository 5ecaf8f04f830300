package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/flood-risk-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/flood-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/flood-risk-service/internal/adapter/openweather"
	"github.com/couchcryptid/flood-risk-service/internal/config"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/gbm"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
	"github.com/couchcryptid/flood-risk-service/internal/predictor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	model, err := gbm.Load(cfg.ModelPath)
	if err != nil {
		logger.Error("failed to load model", "path", cfg.ModelPath, "error", err)
		os.Exit(1)
	}
	logger.Info("model loaded",
		"path", cfg.ModelPath,
		"version", model.Version(),
		"trees", model.NumTrees(),
		"created_at", model.CreatedAt(),
	)

	// Live weather (feature-flagged via OPENWEATHER_ENABLED / OPENWEATHER_API_KEY).
	var weather domain.WeatherProvider
	if cfg.OpenWeatherEnabled {
		client := openweather.NewClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherTimeout, logger, metrics)
		weather = openweather.NewCachedProvider(client, cfg.OpenWeatherCacheSize, cfg.OpenWeatherCacheTTL, clockwork.NewRealClock(), metrics)
		logger.Info("live weather enabled", "cache_size", cfg.OpenWeatherCacheSize, "cache_ttl", cfg.OpenWeatherCacheTTL)
	} else {
		logger.Info("live weather disabled")
	}

	// Prediction events (feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS).
	var (
		publisher predictor.Publisher
		writer    *kafkaadapter.Publisher
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewPublisher(cfg, logger, metrics)
		publisher = writer
		logger.Info("prediction events enabled", "topic", cfg.KafkaPredictionTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("prediction events disabled")
	}

	svc, err := predictor.New(model, weather, publisher, logger, metrics)
	if err != nil {
		logger.Error("model rejected", "path", cfg.ModelPath, "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, cfg.CORSAllowedOrigins, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
