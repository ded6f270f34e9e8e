package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventIteration  EventType = "iteration"
	EventToolCall   EventType = "tool_call"
	EventToolReturn EventType = "tool_return"
	EventFinish     EventType = "finish"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// IterationEvent marks the start of a round.
type IterationEvent struct {
	EventBase
	Iteration int `json:"iteration"`
	Max       int `json:"max"`
}

// ToolEvent represents a tool execution.
type ToolEvent struct {
	EventBase
	ToolName string         `json:"tool_name"`
	Input    map[string]any `json:"input,omitempty"`
	Output   string         `json:"output,omitempty"`
	IsError  bool           `json:"is_error,omitempty"`
	Duration time.Duration  `json:"duration,omitempty"`
}

// Outcome describes how a loop invocation ended.
type Outcome string

const (
	OutcomeAnswered  Outcome = "answered"
	OutcomeExhausted Outcome = "exhausted"
	OutcomeFailed    Outcome = "failed"
)

// FinishEvent is emitted once per loop invocation.
type FinishEvent struct {
	EventBase
	Outcome    Outcome `json:"outcome"`
	Iterations int     `json:"iterations"`
}

// LifecycleHooks defines callbacks for loop observability.
type LifecycleHooks struct {
	OnIteration  func(context.Context, *IterationEvent)
	OnToolCall   func(context.Context, *ToolEvent)
	OnToolReturn func(context.Context, *ToolEvent)
	OnFinish     func(context.Context, *FinishEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnIteration:  chain(h.OnIteration, other.OnIteration),
		OnToolCall:   chain(h.OnToolCall, other.OnToolCall),
		OnToolReturn: chain(h.OnToolReturn, other.OnToolReturn),
		OnFinish:     chain(h.OnFinish, other.OnFinish),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
