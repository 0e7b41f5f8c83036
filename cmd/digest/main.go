package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/station-digest-service/internal/adapter/ecfeed"
	"github.com/couchcryptid/station-digest-service/internal/adapter/fetch"
	httpadapter "github.com/couchcryptid/station-digest-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/station-digest-service/internal/adapter/kafka"
	"github.com/couchcryptid/station-digest-service/internal/adapter/mqtt"
	"github.com/couchcryptid/station-digest-service/internal/adapter/station"
	"github.com/couchcryptid/station-digest-service/internal/adapter/wunderground"
	"github.com/couchcryptid/station-digest-service/internal/config"
	"github.com/couchcryptid/station-digest-service/internal/domain"
	"github.com/couchcryptid/station-digest-service/internal/observability"
	"github.com/couchcryptid/station-digest-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("invalid station timezone", "error", err)
		os.Exit(1)
	}

	httpClient := fetch.NewClient(cfg.FetchTimeout, cfg.FetchRetries)
	sources := pipeline.Sources{}

	// Polled current conditions (feature-flagged via STATION_URL).
	if cfg.StationURL != "" {
		sources.Reading = station.NewClient(httpClient, cfg.StationURL, logger)
		logger.Info("station polling enabled", "interval", cfg.ReadingInterval)
	} else {
		logger.Info("station polling disabled")
	}

	// Weather Underground history (feature-flagged via WU_ENABLED).
	if cfg.WUEnabled {
		client := wunderground.NewClient(httpClient, cfg.WUBaseURL, cfg.WUStationID, cfg.WUAPIKey, logger)
		days := wunderground.NewCachedHistory(client, cfg.WUHistoryCacheSize, metrics.HistoryCache)
		src := wunderground.NewSource(client, days, loc, clock, logger)
		sources.History = src
		sources.Weekly = src
		logger.Info("weather underground enabled", "station", cfg.WUStationID, "cache_size", cfg.WUHistoryCacheSize)
	} else {
		logger.Info("weather underground disabled")
	}

	feeds := ecfeed.NewClient(httpClient, logger)
	if cfg.ForecastFeedURL != "" {
		sources.Forecast = ecfeed.NewForecastFeed(feeds, cfg.ForecastFeedURL)
	}
	for _, f := range cfg.WarningFeeds {
		sources.Warnings = append(sources.Warnings, ecfeed.NewWarningFeed(feeds, f.Region, f.URL))
	}

	var publisher pipeline.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka digest sink enabled", "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(sources, publisher, clock, logger, metrics, pipeline.Options{
		StationID:        cfg.StationID,
		Location:         loc,
		ReadingInterval:  cfg.ReadingInterval,
		HistoryInterval:  cfg.HistoryInterval,
		WeeklyInterval:   cfg.WeeklyInterval,
		ForecastInterval: cfg.ForecastInterval,
		WarningInterval:  cfg.WarningInterval,
		FetchTimeout:     cfg.FetchTimeout,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Pushed readings (feature-flagged via MQTT_ENABLED).
	var sub *mqtt.Subscriber
	if cfg.MQTTEnabled {
		sub = mqtt.NewSubscriber(cfg, logger, metrics)
		sub.SetHandler(func(r domain.Reading) { p.PushReading(ctx, r) })
		go func() {
			if err := sub.Connect(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("mqtt connect error", "error", err)
			}
		}()
	}

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start refresh pipeline.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if sub != nil {
		sub.Disconnect()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
