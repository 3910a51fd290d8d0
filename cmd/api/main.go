package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/healthrec/record-api/internal/config"
	accountHandler "github.com/healthrec/record-api/internal/handler/account"
	authHandler "github.com/healthrec/record-api/internal/handler/auth"
	doctorHandler "github.com/healthrec/record-api/internal/handler/doctor"
	healthHandler "github.com/healthrec/record-api/internal/handler/health"
	notificationHandler "github.com/healthrec/record-api/internal/handler/notification"
	recordHandler "github.com/healthrec/record-api/internal/handler/record"
	"github.com/healthrec/record-api/internal/middleware"
	"github.com/healthrec/record-api/internal/repository/postgres"
	"github.com/healthrec/record-api/internal/router"
	accountService "github.com/healthrec/record-api/internal/service/account"
	assignmentService "github.com/healthrec/record-api/internal/service/assignment"
	notificationService "github.com/healthrec/record-api/internal/service/notification"
	recordService "github.com/healthrec/record-api/internal/service/record"
	"github.com/healthrec/record-api/pkg/auth"
	"github.com/healthrec/record-api/pkg/logger"
	"github.com/healthrec/record-api/pkg/security"
	"github.com/healthrec/record-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:   parseLevel(cfg.Logging.Level),
		Console: cfg.Logging.Console,
	})

	if err := validator.Register(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validations")
	}

	db, err := postgres.NewDB(cfg.Database.ToPostgresConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	base := postgres.NewBaseRepository(db)
	accountRepo := postgres.NewAccountRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	doctorRepo := postgres.NewDoctorRepository(base)
	recordRepo := postgres.NewRecordRepository(base)
	commentRepo := postgres.NewCommentRepository(base)
	notificationRepo := postgres.NewNotificationRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	// Services
	jwtSvc := auth.NewJWTService(cfg.JWT.ToAuthConfig())
	hasher := security.NewBcryptHasher(0)
	dispatcher := notificationService.NewDispatcher(outboxRepo)

	accountSvc := accountService.NewService(accountRepo, patientRepo, doctorRepo, hasher, jwtSvc)
	assignmentSvc := assignmentService.NewService(patientRepo, doctorRepo, accountRepo, dispatcher, appLogger)
	recordSvc := recordService.NewService(recordRepo, commentRepo, patientRepo, doctorRepo, accountRepo, dispatcher, appLogger)
	notificationSvc := notificationService.NewService(notificationRepo)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, accountSvc)

	authH := authHandler.NewHandler(accountSvc)
	accountH := accountHandler.NewHandler(accountSvc)
	doctorH := doctorHandler.NewHandler(assignmentSvc)
	recordH := recordHandler.NewHandler(recordSvc)
	notificationH := notificationHandler.NewHandler(notificationSvc)
	healthH := healthHandler.NewHandler(db)

	timeout := 30 * time.Second
	if cfg.Server.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	}

	rps := cfg.RateLimit.RequestsPerSecond
	if rps <= 0 {
		rps = 100
	}
	burst := cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 200
	}

	r := router.NewRouter(
		authMiddleware,
		authH,
		accountH,
		doctorH,
		recordH,
		notificationH,
		healthH,
		router.Config{
			RateLimit:     rate.Limit(rps),
			RateBurst:     burst,
			CORSConfig:    middleware.DefaultCORSConfig(),
			Timeout:       timeout,
			MetricsPrefix: "record_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info("starting server", map[string]interface{}{"port": cfg.Server.Port})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func parseLevel(level string) logger.Level {
	switch level {
	case "debug":
		return logger.DebugLevel
	case "warn":
		return logger.WarnLevel
	case "error":
		return logger.ErrorLevel
	default:
		return logger.InfoLevel
	}
}
