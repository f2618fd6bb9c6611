package core

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"plt.tracker/internal/ports/messaging"
	"plt.tracker/pkg/telemetry"
)

type EmailService interface {
	SendShiftSummary(ctx context.Context, to string, event messaging.ShiftClosedEvent) error
}

// SESClient is the part of the SES client the e-mail service uses.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESEmailService struct {
	client SESClient
	sender string
}

func NewSESEmailService(client SESClient, sender string) *SESEmailService {
	return &SESEmailService{client: client, sender: sender}
}

func (s *SESEmailService) SendShiftSummary(ctx context.Context, to string, event messaging.ShiftClosedEvent) error {
	tracer := otel.Tracer("ses-email-service")
	ctx, span := tracer.Start(ctx, "send_email", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if palletID := telemetry.GetPalletIDFromContext(ctx); palletID != "" {
		span.SetAttributes(attribute.String("app.palletId", palletID))
	}

	input := &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(fmt.Sprintf("PLT %s completed", event.PalletID)),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(SummaryText(event)),
				},
			},
		},
	}

	_, err := s.client.SendEmail(ctx, input)
	return err
}

// SummaryText is the plain-text body of the close summary.
func SummaryText(event messaging.ShiftClosedEvent) string {
	return fmt.Sprintf(
		"PLT ID: %s\nName: %s\nShift: %s\nDate: %s\nIn Time: %s\nOut Time: %s\nTotal Time: %s\n",
		event.PalletID, event.WorkerName, event.ShiftLabel, event.CheckInDate,
		event.CheckInTime, event.CheckOutTime, event.TotalDuration,
	)
}
