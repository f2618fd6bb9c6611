package wms

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"plt.tracker/internal/ports/messaging"
	"plt.tracker/internal/worker"
	"plt.tracker/internal/worker/wmsapi"
)

// WMSProcessor forwards closed pallets to the WMS API. A circuit breaker
// stops calls while the API keeps failing.
type WMSProcessor struct {
	api wmsapi.Client
	cb  *gobreaker.CircuitBreaker
}

func NewProcessor(api wmsapi.Client) *WMSProcessor {
	settings := gobreaker.Settings{
		Name:        "WMS-API",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if failure rate is at least 50% after at least 10 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
		// A rejected payload says nothing about the health of the API.
		IsSuccessful: func(err error) bool {
			return err == nil || isPermanent(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
		},
	}

	return &WMSProcessor{
		api: api,
		cb:  gobreaker.NewCircuitBreaker(settings),
	}
}

func (p *WMSProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var event messaging.ShiftClosedEvent
	if msg.Body == nil {
		return false, 0, errors.New("empty message body")
	}
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal shift closed event")
		return false, 0, err
	}

	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.api.RecordPalletCompleted(ctx, event)
	})
	if err == nil {
		return false, 0, nil
	}

	if isPermanent(err) {
		return false, 0, err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		log.Ctx(ctx).Warn().Msg("Circuit breaker is open; skipping WMS API call")
	}
	return worker.RetryAfter(msg, err)
}

// State exposes the breaker state for health reporting.
func (p *WMSProcessor) State() gobreaker.State {
	return p.cb.State()
}

func isPermanent(err error) bool {
	var serr *wmsapi.StatusError
	return errors.As(err, &serr) && serr.Permanent()
}
