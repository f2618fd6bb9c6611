package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Producer fans a shift-closed event out to the e-mail and WMS queues.
// An empty queue URL disables that destination.
type Producer struct {
	sender     MessageSender
	emailQueue string
	wmsQueue   string
}

func NewProducer(sender MessageSender, emailQueueURL, wmsQueueURL string) *Producer {
	return &Producer{
		sender:     sender,
		emailQueue: emailQueueURL,
		wmsQueue:   wmsQueueURL,
	}
}

func NewSQSProducer(client SQSClient, emailQueueURL, wmsQueueURL string) *Producer {
	return NewProducer(&SQSSender{client: client}, emailQueueURL, wmsQueueURL)
}

// PublishShiftClosed sends the event to every configured queue. It tries all
// destinations and joins the failures.
func (p *Producer) PublishShiftClosed(ctx context.Context, event ShiftClosedEvent) error {
	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attribute.String("app.palletId", event.PalletID))
	}

	var errs []error
	for _, destination := range []string{p.emailQueue, p.wmsQueue} {
		if destination == "" {
			continue
		}
		if err := p.sender.SendMessage(ctx, destination, b); err != nil {
			errs = append(errs, fmt.Errorf("failed to send message to %s: %w", destination, err))
		}
	}
	return errors.Join(errs...)
}
