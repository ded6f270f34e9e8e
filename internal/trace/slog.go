package trace

import (
	"context"
	"log/slog"
	"time"

	"github.com/hazriqpedia/waybill/pkg/ports"
)

type slogSpanKey struct{}

// SlogTracer logs spans at debug level through a slog.Logger.
type SlogTracer struct {
	logger *slog.Logger
}

// NewSlogTracer creates a tracer on logger.
func NewSlogTracer(logger *slog.Logger) *SlogTracer {
	return &SlogTracer{logger: logger}
}

func (t *SlogTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error)) {
	span := t.current(ctx).With("span", name)
	start := time.Now()
	span.DebugContext(ctx, "span_start", flatten(attrs)...)

	return context.WithValue(ctx, slogSpanKey{}, span), func(err error) {
		if err != nil {
			span.WarnContext(ctx, "span_end", "duration", time.Since(start), "err", err)
			return
		}
		span.DebugContext(ctx, "span_end", "duration", time.Since(start))
	}
}

func (t *SlogTracer) Event(ctx context.Context, name string, attrs map[string]any) {
	t.current(ctx).DebugContext(ctx, name, flatten(attrs)...)
}

func (t *SlogTracer) current(ctx context.Context) *slog.Logger {
	if span, ok := ctx.Value(slogSpanKey{}).(*slog.Logger); ok {
		return span
	}
	return t.logger
}

func flatten(attrs map[string]any) []any {
	args := make([]any, 0, len(attrs)*2)
	for k, v := range attrs {
		args = append(args, k, v)
	}
	return args
}

var _ ports.Tracer = (*SlogTracer)(nil)
