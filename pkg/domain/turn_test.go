package domain_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazriqpedia/waybill/pkg/domain"
)

func TestToolsUsed_OrderAndDuplicates(t *testing.T) {
	trace := []domain.Turn{
		domain.UserMessage("reschedule AWB-12345"),
		domain.NewToolCall(domain.ToolCall{ID: "1", Name: "check_reschedule_availability"}),
		domain.NewToolResult(domain.ToolResult{ID: "1", Name: "check_reschedule_availability", Output: "yes"}),
		domain.NewToolCall(domain.ToolCall{ID: "2", Name: "get_reschedule_dates"}),
		domain.NewToolResult(domain.ToolResult{ID: "2", Name: "get_reschedule_dates", Output: "dates"}),
		domain.NewToolCall(domain.ToolCall{ID: "3", Name: "check_reschedule_availability"}),
		domain.FinalAnswer("done"),
	}
	assert.Equal(t, []string{"check_reschedule_availability", "get_reschedule_dates"}, domain.ToolsUsed(trace))
	assert.Nil(t, domain.ToolsUsed(trace[:1]))
}

func TestTurn_ToolCallRoundTrip(t *testing.T) {
	call := domain.ToolCall{ID: "call_1", Name: "track_shipment", Args: map[string]any{"tracking_number": "AWB-1"}}
	turn := domain.NewToolCall(call)

	assert.Equal(t, domain.TurnToolCall, turn.Kind)
	assert.Equal(t, call, turn.ToolCall())
	assert.False(t, turn.CreatedAt.IsZero())
}

func TestCompletionRequest_Turns(t *testing.T) {
	req := domain.CompletionRequest{
		History: []domain.Turn{domain.UserMessage("a"), domain.FinalAnswer("b")},
		Trace:   []domain.Turn{domain.UserMessage("c")},
	}
	turns := req.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, "a", turns[0].Text)
	assert.Equal(t, "c", turns[2].Text)

	assert.True(t, domain.Completion{Text: "x"}.IsFinal())
	assert.False(t, domain.Completion{ToolCall: &domain.ToolCall{Name: "t"}}.IsFinal())
}

func TestTool_JSONSchema(t *testing.T) {
	tool := domain.Tool{
		Name: "confirm_reschedule",
		Parameters: []domain.Parameter{
			{Name: "tracking_number", Type: "string", Required: true},
			{Name: "postal_code", Description: "Postal code"},
		},
	}
	schema := tool.JSONSchema()
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"tracking_number"}, schema["required"])

	props := schema["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "string", "description": "Postal code"}, props["postal_code"])
}

func TestLifecycleHooks_MergeOrder(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnFinish: func(context.Context, *domain.FinishEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{
		OnFinish:   func(context.Context, *domain.FinishEvent) { calls = append(calls, "b") },
		OnToolCall: func(context.Context, *domain.ToolEvent) { calls = append(calls, "tool") },
	}

	merged := a.Merge(b)
	merged.OnFinish(context.Background(), &domain.FinishEvent{})
	merged.OnToolCall(context.Background(), &domain.ToolEvent{})
	assert.Nil(t, merged.OnIteration)
	assert.Equal(t, []string{"a", "b", "tool"}, calls)
}
