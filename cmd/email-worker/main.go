package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"

	"plt.tracker/internal/config"
	"plt.tracker/internal/core"
	"plt.tracker/internal/worker"
	"plt.tracker/internal/worker/email"
	"plt.tracker/pkg/aws"
	"plt.tracker/pkg/logger"
	"plt.tracker/pkg/telemetry"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}
	logger.Setup(cfg.IsLocalDev)

	if cfg.EmailSQSQueueURL == "" {
		log.Fatal().Msg("EMAIL_SQS_QUEUE_URL is required")
	}

	shutdownTracer, err := telemetry.InitTracer("plt-email-worker", cfg.TraceExporter, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	// AWS SDK Config
	awsCfg, err := aws.NewAWSConfig(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to load AWS SDK config")
	}

	// Initialize Dependencies
	sqsClient := sqs.NewFromConfig(awsCfg)
	sesClient := ses.NewFromConfig(awsCfg)
	emailService := core.NewSESEmailService(sesClient, cfg.EmailSender)
	processor := email.NewProcessor(emailService, cfg.EmailRecipient)

	// Start Worker; it returns once in-flight messages are settled.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker.NewWorker(sqsClient, cfg.EmailSQSQueueURL, processor).Start(ctx)

	log.Info().Msg("Worker exited gracefully")
}
