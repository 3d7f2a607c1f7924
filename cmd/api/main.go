package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	kafkaadapter "github.com/kamalsai369/EcoMind/internal/adapter/kafka"
	"github.com/kamalsai369/EcoMind/internal/adapter/ops"
	"github.com/kamalsai369/EcoMind/internal/adapter/rest"
	"github.com/kamalsai369/EcoMind/internal/adapter/satellite"
	"github.com/kamalsai369/EcoMind/internal/capture"
	"github.com/kamalsai369/EcoMind/internal/config"
	"github.com/kamalsai369/EcoMind/internal/domain"
	"github.com/kamalsai369/EcoMind/internal/forest"
	"github.com/kamalsai369/EcoMind/internal/observability"
	"github.com/kamalsai369/EcoMind/internal/scheduler"
	"github.com/kamalsai369/EcoMind/internal/store"
	"github.com/kamalsai369/EcoMind/internal/store/sqlite"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel)
	metrics := observability.NewMetrics()

	var st store.Store
	if cfg.StorePath == "" {
		st = store.NewMemoryStore()
		logger.Info("using in-memory store")
	} else {
		s, err := sqlite.Open(cfg.StorePath)
		if err != nil {
			logger.Error("failed to open sqlite store", "error", err, "path", cfg.StorePath)
			os.Exit(1)
		}
		st = s
		logger.Info("using sqlite store", "path", cfg.StorePath)
	}

	// Observation sink (feature-flagged via KAFKA_BROKERS).
	var publisher forest.ObservationPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		publisher = writer
		logger.Info("observation publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("observation publishing disabled")
	}

	// Vegetation indices (feature-flagged via SATELLITE_URL / SATELLITE_ENABLED).
	var vegetation domain.VegetationSource
	if cfg.SatelliteEnabled {
		client := satellite.NewClient(cfg.SatelliteURL, cfg.SatelliteAPIKey, cfg.SatelliteTimeout, metrics, logger)
		vegetation = satellite.NewCachedSource(client, cfg.SatelliteCacheSize, metrics)
		metrics.SatelliteEnabled.Set(1)
		logger.Info("satellite vegetation source enabled",
			"cache_size", cfg.SatelliteCacheSize, "timeout", cfg.SatelliteTimeout)
	} else {
		logger.Info("satellite vegetation source disabled, indices fall back to synthesis")
	}

	svc := forest.New(st, domain.NewSynthesizer(nil), publisher, vegetation, logger, metrics)

	var sched *scheduler.Scheduler
	if cfg.CaptureEnabled {
		runner := capture.NewRunner(svc, cfg.CaptureConcurrency, logger, metrics)
		sched = scheduler.New(runner, cfg.CaptureInterval, logger)
		if err := sched.Start(); err != nil {
			logger.Error("failed to start capture scheduler", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("periodic capture disabled")
	}

	app := rest.New(svc, rest.Config{
		DefaultLocation:  cfg.DefaultLocation,
		TrendDefaultDays: cfg.TrendDefaultDays,
		TrendMaxDays:     cfg.TrendMaxDays,
	}, metrics)

	opsServer := ops.NewServer(cfg.OpsAddr, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("api server starting", "addr", cfg.HTTPAddr)
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			logger.Error("api server error", "error", err)
		}
	}()

	go func() {
		if err := opsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("api server shutdown error", "error", err)
	}
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server shutdown error", "error", err)
	}
	if sched != nil {
		sched.Stop()
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := st.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
