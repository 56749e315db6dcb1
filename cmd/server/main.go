package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farmsurvey/internal/app/server/api"
	"farmsurvey/internal/app/server/config"
	syncdomain "farmsurvey/internal/domain/sync"
	"farmsurvey/internal/infrastructure/events"
	"farmsurvey/internal/infrastructure/metrics"
	"farmsurvey/internal/infrastructure/storage/postgres"
	"farmsurvey/internal/infrastructure/telemetry"
	"farmsurvey/internal/utils/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

const startupTimeout = 30 * time.Second

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sentryEnabled, flush, err := telemetry.InitSentry(cfg.Telemetry, cfg.Env)
	if err != nil {
		log.Warn("sentry disabled", "error", err)
	}
	defer flush()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.Release)
	if err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	storage, err := postgres.New(startCtx, cfg.DB, log)
	if err != nil {
		return err
	}
	defer storage.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	syncMetrics, err := metrics.NewSyncMetrics(registry)
	if err != nil {
		return err
	}

	hub := events.NewHub(cfg.Server.AllowedOrigins, syncMetrics, log)
	defer hub.Close()

	publishers := events.Fanout{hub}
	if cfg.MQTT.Broker != "" {
		mqttPub, err := events.NewMQTTPublisher(startCtx, cfg.MQTT, log)
		if err != nil {
			log.Warn("mqtt publisher disabled", "broker", cfg.MQTT.Broker, "error", err)
		} else {
			defer mqttPub.Close()
			publishers = append(publishers, mqttPub)
		}
	}

	router := api.New(cfg, api.Deps{
		Storage:       storage,
		Registry:      registry,
		Metrics:       syncMetrics,
		Live:          hub,
		Publisher:     syncdomain.Publisher(publishers),
		SentryEnabled: sentryEnabled,
	}, log)

	srv := &http.Server{
		Addr:              cfg.Server.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server started", "addr", cfg.Server.RunAddress, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		hub.Close()
		return errors.Join(srv.Shutdown(shutdownCtx), shutdownTracer(shutdownCtx))
	})

	return g.Wait()
}
