package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// Setup configures the global zerolog logger.
func Setup(isLocalDev bool) {
	// Use Unix timestamps for performance and consistency
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if isLocalDev {
		// Pretty printing for local development
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		// Default to JSON output for production
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// EnrichContextWithLogger adds a zerolog logger to the context with trace
// information. Contexts without a recording span get the global logger so
// log.Ctx never falls back to the disabled logger.
func EnrichContextWithLogger(ctx context.Context) context.Context {
	l := log.With()

	span := trace.SpanFromContext(ctx)
	if sCtx := span.SpanContext(); span.IsRecording() && sCtx.HasTraceID() {
		l = l.Str("trace_id", sCtx.TraceID().String()).
			Str("span_id", sCtx.SpanID().String())
	}

	logger := l.Logger()
	return logger.WithContext(ctx)
}

// WithField returns ctx with the context logger extended by key=value.
func WithField(ctx context.Context, key, value string) context.Context {
	l := log.Ctx(ctx).With().Str(key, value).Logger()
	return l.WithContext(ctx)
}
