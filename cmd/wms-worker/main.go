package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"

	"plt.tracker/internal/config"
	"plt.tracker/internal/worker"
	"plt.tracker/internal/worker/wms"
	"plt.tracker/internal/worker/wmsapi"
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

	if cfg.WMSSQSQueueURL == "" {
		log.Fatal().Msg("WMS_SQS_QUEUE_URL is required")
	}

	shutdownTracer, err := telemetry.InitTracer("plt-wms-worker", cfg.TraceExporter, cfg.OTLPEndpoint)
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
	processor := wms.NewProcessor(wmsapi.NewHTTPClient(cfg.WMSAPIURL))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker.NewWorker(sqsClient, cfg.WMSSQSQueueURL, processor).Start(ctx)

	log.Info().Str("breaker", processor.State().String()).Msg("Worker exited gracefully")
}
