package agent

import (
	"log/slog"

	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/hazriqpedia/waybill/pkg/ports"
)

// DefaultMaxIterations is the round budget of a loop.
const DefaultMaxIterations = 5

// Option configures a Loop.
type Option func(*Loop)

// WithMaxIterations sets the round budget. Values below 1 are ignored.
func WithMaxIterations(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.maxIterations = n
		}
	}
}

// WithSystemPrompt sets the system instructions sent every round.
func WithSystemPrompt(prompt string) Option {
	return func(l *Loop) {
		l.systemPrompt = prompt
	}
}

// WithLogger sets the loop logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(l *Loop) {
		l.hooks = l.hooks.Merge(hooks)
	}
}

// WithTracer sets the tracer used for run, provider and tool spans.
func WithTracer(tracer ports.Tracer) Option {
	return func(l *Loop) {
		if tracer != nil {
			l.tracer = tracer
		}
	}
}

// WithToolOutputLimit truncates tool results longer than limit runes. 0 disables it.
func WithToolOutputLimit(limit int) Option {
	return func(l *Loop) {
		l.outputLimit = limit
	}
}
