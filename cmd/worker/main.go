package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/healthrec/record-api/internal/config"
	"github.com/healthrec/record-api/internal/email"
	"github.com/healthrec/record-api/internal/repository/postgres"
	"github.com/healthrec/record-api/pkg/logger"
	"github.com/healthrec/record-api/pkg/messaging/redis"
	"github.com/healthrec/record-api/pkg/metrics"
	"github.com/healthrec/record-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:   logger.InfoLevel,
		Console: cfg.Logging.Console,
	})

	db, err := postgres.NewDB(cfg.Database.ToPostgresConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(base)
	notificationRepo := postgres.NewNotificationRepository(base)
	accountRepo := postgres.NewAccountRepository(base)

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &appLogger.ZL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	var emailSvc email.Service = email.NoopService{}
	if cfg.SMTP.Configured() {
		emailSvc = email.NewSMTPService(cfg.SMTP.ToEmailConfig())
	}

	m := metrics.New("record_worker")

	dispatcher := worker.NewDispatcher(
		outboxRepo,
		notificationRepo,
		accountRepo,
		broker,
		emailSvc,
		cfg.Outbox.ToDispatcherConfig(),
		appLogger,
		m,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go dispatcher.Start(ctx)

	// Expose worker metrics on a side port.
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port+1),
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error(err, "metrics server stopped")
		}
	}()

	appLogger.Info("notification worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker...")
	cancel()
	_ = metricsSrv.Close()
	log.Info().Msg("worker exited properly")
}
