// Package trace provides ports.Tracer implementations.
package trace

import (
	"context"
	"io"
	"time"

	"github.com/hazriqpedia/waybill/pkg/ports"
	"github.com/rs/zerolog"
)

type spanKey struct{}

type zspan struct {
	name   string
	logger zerolog.Logger
}

// ZerologTracer writes spans and events as NDJSON lines.
type ZerologTracer struct {
	logger zerolog.Logger
}

// NewZerologTracer creates a tracer writing to w.
func NewZerologTracer(w io.Writer) *ZerologTracer {
	return &ZerologTracer{logger: zerolog.New(w).With().Timestamp().Logger()}
}

// StartSpan logs span_start and returns a finish function logging span_end.
func (t *ZerologTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error)) {
	spanCtx := t.logger.With().Str("span", name)
	if parent, ok := ctx.Value(spanKey{}).(zspan); ok {
		spanCtx = spanCtx.Str("parent", parent.name)
	}
	for k, v := range attrs {
		spanCtx = spanCtx.Interface(k, v)
	}
	span := spanCtx.Logger()
	start := time.Now()

	span.Info().Str("event", "span_start").Send()

	return context.WithValue(ctx, spanKey{}, zspan{name: name, logger: span}), func(err error) {
		ev := span.Info()
		if err != nil {
			ev = span.Error().Err(err)
		}
		ev.Str("event", "span_end").Dur("duration", time.Since(start)).Send()
	}
}

// Event logs name within the current span, if any.
func (t *ZerologTracer) Event(ctx context.Context, name string, attrs map[string]any) {
	l := t.current(ctx)
	ev := l.Info()
	for k, v := range attrs {
		ev = ev.Interface(k, v)
	}
	ev.Str("event", name).Send()
}

func (t *ZerologTracer) current(ctx context.Context) zerolog.Logger {
	if span, ok := ctx.Value(spanKey{}).(zspan); ok {
		return span.logger
	}
	return t.logger
}

var _ ports.Tracer = (*ZerologTracer)(nil)
