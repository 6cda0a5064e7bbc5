package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hrops-platform/scheduling-service/pkg/cloudevents"
	"github.com/hrops-platform/scheduling-service/pkg/kafka"
	"github.com/hrops-platform/scheduling-service/pkg/logging"
	"github.com/hrops-platform/scheduling-service/pkg/metrics"
	"github.com/hrops-platform/scheduling-service/pkg/middleware"
	"github.com/hrops-platform/scheduling-service/pkg/mongodb"
	"github.com/hrops-platform/scheduling-service/pkg/outbox"
	"github.com/hrops-platform/scheduling-service/pkg/tracing"

	"github.com/hrops-platform/scheduling-service/internal/application"
	"github.com/hrops-platform/scheduling-service/internal/compliance"
	"github.com/hrops-platform/scheduling-service/internal/coverage"
	"github.com/hrops-platform/scheduling-service/internal/domain"
	"github.com/hrops-platform/scheduling-service/internal/infrastructure/hrsync"
	mongoRepo "github.com/hrops-platform/scheduling-service/internal/infrastructure/mongodb"
)

func main() {
	// Setup enhanced logger
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting scheduling-service API")

	// Load configuration
	config := loadConfig()
	ctx := context.Background()

	// Initialize OpenTelemetry tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
		// Continue without tracing - don't exit
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	// Initialize Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	// Initialize MongoDB with instrumentation and a circuit breaker
	protectedMongo, err := mongodb.NewProductionClient(ctx, config.MongoDB, m, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer protectedMongo.Close(ctx)
	instrumentedMongo := protectedMongo.RawClient()
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Initialize Kafka producer with instrumentation and a circuit breaker
	protectedProducer := kafka.NewProductionProducer(config.Kafka, m, logger)
	defer protectedProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	// Initialize CloudEvents factory
	eventFactory := cloudevents.NewEventFactory("/scheduling-service")

	// Initialize repositories with the instrumented client and event factory
	employeeRepo := mongoRepo.NewEmployeeRepository(instrumentedMongo)
	storeRepo := mongoRepo.NewStoreRepository(instrumentedMongo)
	shiftRepo := mongoRepo.NewShiftRepository(instrumentedMongo, eventFactory)
	requirementRepo := mongoRepo.NewRequirementRepository(instrumentedMongo)
	hourBankRepo := mongoRepo.NewHourBankRepository(instrumentedMongo, eventFactory)

	// Initialize and start outbox publisher
	outboxPublisher := outbox.NewPublisher(
		shiftRepo.GetOutboxRepository(),
		protectedProducer,
		logger,
		m,
		&outbox.PublisherConfig{
			PollInterval: 1 * time.Second,
			BatchSize:    100,
		},
	)
	if err := outboxPublisher.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start outbox publisher")
		os.Exit(1)
	}
	defer outboxPublisher.Stop()
	logger.Info("Outbox publisher started")

	// Initialize HR directory client
	hrConfig := hrsync.DefaultConfig(getEnv("HR_DIRECTORY_URL", "http://localhost:8080"))
	hrConfig.APIKey = getEnv("HR_DIRECTORY_API_KEY", "")
	hrConfig.MockEnabled = getEnv("HR_DIRECTORY_MOCK", "false") == "true"
	hrClient := hrsync.NewClient(hrConfig, m, logger)

	// Initialize application services
	validator := coverage.NewValidator()
	checker := compliance.NewChecker(compliance.DefaultRuleSet())

	schedulingService := application.NewSchedulingApplicationService(
		employeeRepo, storeRepo, shiftRepo, requirementRepo, validator, checker, logger,
	)
	hourBankService := application.NewHourBankApplicationService(
		employeeRepo, shiftRepo, hourBankRepo, logger,
	)
	reportingService := application.NewReportingApplicationService(
		employeeRepo, storeRepo, shiftRepo, requirementRepo, validator, checker, logger,
	)
	hrSyncService := application.NewHRSyncApplicationService(
		hrClient, employeeRepo, storeRepo, logger,
	)

	// Consume inbound change notifications from the HR system and refresh
	// the employee directory when one arrives.
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	hrConsumer := kafka.NewProductionConsumer(config.Kafka, m, logger)
	hrConsumer.Subscribe(kafka.Topics.HRSyncInbound, cloudevents.HREmployeeChanged, func(ctx context.Context, event *cloudevents.CloudEvent) error {
		result, err := hrSyncService.SyncEmployees(ctx, application.SyncEmployeesCommand{ActorRole: domain.RoleAdmin})
		if err != nil {
			return err
		}
		logger.Info("Employee directory refreshed from HR notification",
			"eventId", event.ID, "imported", result.Imported, "updated", result.Updated, "skipped", result.Skipped)
		return nil
	})
	go func() {
		if err := hrConsumer.Start(consumerCtx); err != nil && err != context.Canceled {
			logger.WithError(err).Error("HR sync consumer stopped")
		}
	}()
	defer hrConsumer.Close()
	logger.Info("HR sync consumer subscribed", "topic", kafka.Topics.HRSyncInbound)

	// Setup Gin router with middleware
	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)

	router.Use(middleware.CloudEvents(logger))
	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.SimpleTracingMiddleware(serviceName))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	// Health check endpoints
	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return protectedMongo.HealthCheck(ctx)
	}))

	// Metrics endpoint
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	registerRoutes(router, schedulingService, hourBankService, reportingService, hrSyncService, m, logger)

	// Start server
	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}
