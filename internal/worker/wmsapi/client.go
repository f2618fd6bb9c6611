package wmsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"plt.tracker/internal/ports/messaging"
)

// Client reports completed pallets to the warehouse management system.
type Client interface {
	RecordPalletCompleted(ctx context.Context, event messaging.ShiftClosedEvent) error
}

// StatusError is a non-2xx answer from the WMS API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("wms api returned status %d: %s", e.Code, e.Body)
}

// Permanent reports whether retrying the same request cannot succeed.
func (e *StatusError) Permanent() bool {
	return e.Code >= 400 && e.Code < 500 && e.Code != http.StatusTooManyRequests && e.Code != http.StatusRequestTimeout
}

type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
	}
}

// RecordPalletCompleted posts the event as JSON. The idempotency key lets the
// WMS drop the duplicates an at-least-once queue produces.
func (c *HTTPClient) RecordPalletCompleted(ctx context.Context, event messaging.ShiftClosedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal wms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create wms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", IdempotencyKey(event))

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call wms api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}

	log.Ctx(ctx).Info().Str("pallet_id", event.PalletID).Msg("Pallet completion recorded in WMS")
	return nil
}

// IdempotencyKey identifies one close of one pallet.
func IdempotencyKey(event messaging.ShiftClosedEvent) string {
	return fmt.Sprintf("%s@%s", event.PalletID, event.ClosedAt.UTC().Format(time.RFC3339Nano))
}
