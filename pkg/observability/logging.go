package observability

import (
	"context"
	"log/slog"

	"github.com/hazriqpedia/waybill/pkg/domain"
)

// LogHooks returns lifecycle hooks that log every loop event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnIteration: func(ctx context.Context, e *domain.IterationEvent) {
			logger.DebugContext(ctx, "iteration", "iteration", e.Iteration, "max", e.Max)
		},
		OnToolCall: func(ctx context.Context, e *domain.ToolEvent) {
			logger.InfoContext(ctx, "tool_call", "tool_name", e.ToolName, "input", e.Input)
		},
		OnToolReturn: func(ctx context.Context, e *domain.ToolEvent) {
			logger.InfoContext(ctx, "tool_return",
				"tool_name", e.ToolName,
				"is_error", e.IsError,
				"duration", e.Duration,
			)
		},
		OnFinish: func(ctx context.Context, e *domain.FinishEvent) {
			logger.InfoContext(ctx, "finish", "outcome", e.Outcome, "iterations", e.Iterations)
		},
	}
}
