package agent_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/hazriqpedia/waybill/pkg/agent"
	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/hazriqpedia/waybill/pkg/ports"
	"github.com/hazriqpedia/waybill/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted replays completions in order and records every request.
type scripted struct {
	mu       sync.Mutex
	steps    []domain.Completion
	requests []domain.CompletionRequest
}

func (s *scripted) Complete(_ context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.steps) == 0 {
		return domain.Completion{Text: "done"}, nil
	}
	next := s.steps[0]
	s.steps = s.steps[1:]
	return next, nil
}

func call(name string, args map[string]any) domain.Completion {
	return domain.Completion{ToolCall: &domain.ToolCall{ID: "call_" + name, Name: name, Args: args}}
}

func countingRegistry(t *testing.T, calls *int) *registry.Registry {
	t.Helper()
	reg, err := registry.New(
		registry.Entry{
			Tool: domain.Tool{Name: "ping", Description: "pong"},
			Handler: func(_ context.Context, _ map[string]any) (string, error) {
				*calls++
				return "pong", nil
			},
		},
		registry.Entry{
			Tool: domain.Tool{Name: "boom", Description: "always fails"},
			Handler: func(_ context.Context, _ map[string]any) (string, error) {
				return "", errors.New("kaboom")
			},
		},
		registry.Entry{
			Tool: domain.Tool{Name: "long", Description: "long output"},
			Handler: func(_ context.Context, _ map[string]any) (string, error) {
				return strings.Repeat("é", 50), nil
			},
		},
	)
	require.NoError(t, err)
	return reg
}

func TestRun_FinalAnswerWithoutTools(t *testing.T) {
	var calls int
	client := &scripted{steps: []domain.Completion{{Text: "hello"}}}
	loop := agent.New(client, countingRegistry(t, &calls))

	res, err := loop.Run(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Answer)
	assert.Equal(t, 1, res.Iterations)
	assert.Empty(t, res.ToolsUsed)
	require.Len(t, res.Trace, 2)
	assert.Equal(t, domain.TurnUser, res.Trace[0].Kind)
	assert.Equal(t, domain.TurnFinal, res.Trace[1].Kind)
}

func TestRun_ToolThenAnswer(t *testing.T) {
	var calls int
	client := &scripted{steps: []domain.Completion{call("ping", nil), {Text: "answer"}}}
	loop := agent.New(client, countingRegistry(t, &calls), agent.WithSystemPrompt("sys"))

	res, err := loop.Run(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"ping"}, res.ToolsUsed)
	assert.Equal(t, 2, res.Iterations)

	kinds := make([]domain.TurnKind, len(res.Trace))
	for i, turn := range res.Trace {
		kinds[i] = turn.Kind
	}
	assert.Equal(t, []domain.TurnKind{domain.TurnUser, domain.TurnToolCall, domain.TurnToolResult, domain.TurnFinal}, kinds)
	assert.Equal(t, "pong", res.Trace[2].Text)
	assert.Equal(t, "call_ping", res.Trace[2].CallID)

	require.Len(t, client.requests, 2)
	assert.Equal(t, "sys", client.requests[0].System)
	assert.Len(t, client.requests[0].Tools, 3)
	assert.Len(t, client.requests[1].Trace, 3)
}

func TestRun_ExhaustsAfterExactlyN(t *testing.T) {
	var calls int
	always := ports.CompletionFunc(func(_ context.Context, _ domain.CompletionRequest) (domain.Completion, error) {
		return call("ping", nil), nil
	})

	for _, n := range []int{1, 3, agent.DefaultMaxIterations} {
		calls = 0
		opts := []agent.Option{}
		if n != agent.DefaultMaxIterations {
			opts = append(opts, agent.WithMaxIterations(n))
		}
		loop := agent.New(always, countingRegistry(t, &calls), opts...)

		res, err := loop.Run(context.Background(), "loop forever", nil)
		require.ErrorIs(t, err, domain.ErrIterationExhausted)
		assert.True(t, agent.IsExhausted(err))
		assert.Equal(t, n, calls, "tool invocations for N=%d", n)
		require.NotNil(t, res)
		assert.Equal(t, n, res.Iterations)
		assert.Empty(t, res.Answer)
		assert.Len(t, res.Trace, 1+2*n)
	}
}

func TestRun_UnknownToolRecovers(t *testing.T) {
	var calls int
	client := &scripted{steps: []domain.Completion{call("teleport", nil), {Text: "sorry"}}}
	loop := agent.New(client, countingRegistry(t, &calls))

	res, err := loop.Run(context.Background(), "q", nil)
	require.NoError(t, err)
	require.Len(t, client.requests, 2, "loop should ask the client again after an unknown tool")

	result := res.Trace[2]
	assert.Equal(t, domain.TurnToolResult, result.Kind)
	assert.True(t, result.IsError)
	assert.True(t, strings.HasPrefix(result.Text, "tool not found: teleport."))
	assert.Contains(t, result.Text, "ping, boom, long")
	assert.Equal(t, 0, calls)
}

func TestRun_HandlerFaultBecomesResult(t *testing.T) {
	var calls int
	client := &scripted{steps: []domain.Completion{call("boom", nil), {Text: "ok"}}}
	loop := agent.New(client, countingRegistry(t, &calls))

	res, err := loop.Run(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "error: kaboom", res.Trace[2].Text)
	assert.True(t, res.Trace[2].IsError)
}

func TestRun_HistoryPrecedesQuery(t *testing.T) {
	var calls int
	client := &scripted{steps: []domain.Completion{call("ping", nil), {Text: "ok"}}}
	loop := agent.New(client, countingRegistry(t, &calls))

	history := []domain.Turn{domain.UserMessage("track AWB-12345"), domain.FinalAnswer("En Route")}
	_, err := loop.Run(context.Background(), "can I reschedule it?", history)
	require.NoError(t, err)

	for _, req := range client.requests {
		turns := req.Turns()
		require.GreaterOrEqual(t, len(turns), 3)
		assert.Equal(t, "track AWB-12345", turns[0].Text)
		assert.Equal(t, "En Route", turns[1].Text)
		assert.Equal(t, "can I reschedule it?", turns[2].Text)
	}
}

func TestRun_CompletionErrorIsWrapped(t *testing.T) {
	var calls int
	apiErr := errors.New("quota exceeded")
	client := ports.CompletionFunc(func(_ context.Context, _ domain.CompletionRequest) (domain.Completion, error) {
		return domain.Completion{}, apiErr
	})
	loop := agent.New(client, countingRegistry(t, &calls))

	_, err := loop.Run(context.Background(), "q", nil)
	require.ErrorIs(t, err, domain.ErrCompletion)
	assert.ErrorIs(t, err, apiErr)
	assert.False(t, agent.IsExhausted(err))
}

func TestRun_ToolOutputLimit(t *testing.T) {
	var calls int
	client := &scripted{steps: []domain.Completion{call("long", nil), {Text: "ok"}}}
	loop := agent.New(client, countingRegistry(t, &calls), agent.WithToolOutputLimit(10))

	res, err := loop.Run(context.Background(), "q", nil)
	require.NoError(t, err)
	out := res.Trace[2].Text
	assert.True(t, strings.HasPrefix(out, strings.Repeat("é", 10)+"..."))
	assert.Contains(t, out, "40 more characters")
}

func TestRun_Hooks(t *testing.T) {
	var calls int
	var iterations, started, returned int
	var outcome domain.Outcome
	var lastDurationSet bool

	client := &scripted{steps: []domain.Completion{call("ping", nil), call("teleport", nil), {Text: "ok"}}}
	loop := agent.New(client, countingRegistry(t, &calls), agent.WithLifecycleHooks(domain.LifecycleHooks{
		OnIteration: func(_ context.Context, _ *domain.IterationEvent) { iterations++ },
		OnToolCall:  func(_ context.Context, _ *domain.ToolEvent) { started++ },
		OnToolReturn: func(_ context.Context, e *domain.ToolEvent) {
			returned++
			lastDurationSet = e.Duration >= 0
		},
		OnFinish: func(_ context.Context, e *domain.FinishEvent) { outcome = e.Outcome },
	}))

	_, err := loop.Run(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, iterations)
	assert.Equal(t, 2, started)
	assert.Equal(t, 2, returned)
	assert.True(t, lastDurationSet)
	assert.Equal(t, domain.OutcomeAnswered, outcome)
}
