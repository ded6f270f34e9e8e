package runner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hazriqpedia/waybill/pkg/domain"
)

// ToolEcho returns lifecycle hooks that report each tool call and its result
// through the handler's system channel.
func ToolEcho(handler IOHandler) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnToolCall: func(ctx context.Context, ev *domain.ToolEvent) {
			_ = handler.SystemOutput(ctx, fmt.Sprintf("Calling %s(%s)", ev.ToolName, formatArgs(ev.Input)))
		},
		OnToolReturn: func(ctx context.Context, ev *domain.ToolEvent) {
			status := "ok"
			if ev.IsError {
				status = "error"
			}
			_ = handler.SystemOutput(ctx, fmt.Sprintf("%s returned (%s, %s): %s", ev.ToolName, status, ev.Duration.Round(time.Millisecond), ev.Output))
		},
	}
}

func formatArgs(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return strings.Join(parts, ", ")
}
