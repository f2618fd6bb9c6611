package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/rs/zerolog/log"

	"plt.tracker/internal/config"
)

// NewAWSConfig loads the SDK configuration shared by the SQS and SES clients.
// In local development every call is routed to AWS_ENDPOINT (LocalStack) with
// static credentials.
func NewAWSConfig(ctx context.Context, appConfig config.Config) (aws.Config, error) {
	return awsConfig.LoadDefaultConfig(ctx, loadOptions(appConfig)...)
}

func loadOptions(appConfig config.Config) []func(*awsConfig.LoadOptions) error {
	opts := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(appConfig.AWSRegion),
	}
	if !appConfig.IsLocalDev {
		// IAM role or environment credentials
		log.Info().Str("region", appConfig.AWSRegion).Msg("Using standard AWS credential chain")
		return opts
	}

	log.Info().Str("endpoint", appConfig.AWSEndpoint).Msg("Local development mode, routing AWS calls to LocalStack")
	opts = append(opts, awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")))
	if appConfig.AWSEndpoint != "" {
		opts = append(opts, awsConfig.WithBaseEndpoint(appConfig.AWSEndpoint))
	}
	return opts
}
