package email

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"

	"plt.tracker/internal/core"
	"plt.tracker/internal/ports/messaging"
	"plt.tracker/internal/worker"
)

var errMissingPallet = errors.New("shift closed event has no pallet id")

// EmailProcessor sends the close summary of each ShiftClosedEvent to a
// fixed supervisor address.
type EmailProcessor struct {
	emailService core.EmailService
	recipient    string
}

func NewProcessor(emailService core.EmailService, recipient string) *EmailProcessor {
	return &EmailProcessor{
		emailService: emailService,
		recipient:    recipient,
	}
}

// Process sends one summary. Send failures are retried with backoff; a
// malformed message is not.
func (p *EmailProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	event, err := decodeEvent(msg)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to decode shift closed event")
		return false, 0, err
	}

	if err := p.emailService.SendShiftSummary(ctx, p.recipient, event); err != nil {
		return worker.RetryAfter(msg, err)
	}

	log.Ctx(ctx).Info().Str("recipient", p.recipient).Msg("Shift summary e-mailed")
	return false, 0, nil
}

func decodeEvent(msg types.Message) (messaging.ShiftClosedEvent, error) {
	var event messaging.ShiftClosedEvent
	if msg.Body == nil {
		return event, errors.New("empty message body")
	}
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		return event, err
	}
	if event.PalletID == "" {
		return event, errMissingPallet
	}
	return event, nil
}
