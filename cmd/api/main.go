// Entry point for the PLT tracker web app
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"plt.tracker/internal/api"
	"plt.tracker/internal/api/handler"
	"plt.tracker/internal/config"
	"plt.tracker/internal/core"
	"plt.tracker/internal/ports/messaging"
	"plt.tracker/internal/ports/repository"
	"plt.tracker/pkg/aws"
	"plt.tracker/pkg/database"
	"plt.tracker/pkg/logger"
	"plt.tracker/pkg/telemetry"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}

	// Configure structured logging
	logger.Setup(cfg.IsLocalDev)

	// Configure OpenTelemetry Tracing
	shutdownTracer, err := telemetry.InitTracer("plt-tracker-api", cfg.TraceExporter, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid timezone")
	}

	repo, closeStore, err := openStore(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Could not open record store")
	}
	defer closeStore()

	publisher, err := newPublisher(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to load AWS SDK config")
	}

	passwordHash, err := handler.ResolvePasswordHash(cfg.AdminPasswordHash, cfg.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid admin credentials")
	}

	// Initialize dependencies
	service := core.NewShiftService(repo, publisher, core.Options{
		Location:               loc,
		RejectDuplicatePallets: cfg.RejectDuplicatePallets,
	})
	gate := handler.NewSessionGate(handler.GateConfig{
		Secret:       []byte(cfg.SessionSecret),
		Username:     cfg.AdminUsername,
		PasswordHash: passwordHash,
		IdleTimeout:  cfg.SessionIdleTimeout,
	})

	// Setup router and server
	router := api.NewRouter(api.Dependencies{
		Service:     service,
		Gate:        gate,
		Workers:     cfg.Workers,
		ReportTitle: cfg.ReportTitle,
		OpenFile:    cfg.OpenShiftsFile,
		ClosedFile:  cfg.ClosedShiftsFile,
	})

	// Wrap the router with OpenTelemetry middleware to create spans for each request
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           otelhttp.NewHandler(router, "plt-tracker"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Str("store", cfg.StoreDriver).Msg("PLT tracker starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

// openStore builds the configured record store and returns its cleanup func.
func openStore(ctx context.Context, cfg config.Config) (repository.Repository, func(), error) {
	if cfg.StoreDriver == config.StorePostgres {
		db, err := database.NewInstrumentedConnection(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("Successfully connected to the database.")
		return repository.NewPostgresRepository(db), func() { db.Close() }, nil
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, nil, err
	}
	repo, err := repository.NewXLSXRepository(cfg.OpenShiftsPath(), cfg.ClosedShiftsPath())
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("open", cfg.OpenShiftsPath()).Str("closed", cfg.ClosedShiftsPath()).Msg("Using spreadsheet store")
	return repo, func() {}, nil
}

// newPublisher returns the SQS relay when a queue is configured, else nil.
func newPublisher(ctx context.Context, cfg config.Config) (messaging.EventPublisher, error) {
	if cfg.EmailSQSQueueURL == "" && cfg.WMSSQSQueueURL == "" {
		log.Info().Msg("No event queues configured, shift events disabled")
		return nil, nil
	}

	awsCfg, err := aws.NewAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return messaging.NewSQSProducer(sqs.NewFromConfig(awsCfg), cfg.EmailSQSQueueURL, cfg.WMSSQSQueueURL), nil
}
