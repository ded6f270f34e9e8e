package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hazriqpedia/waybill/internal/logging"
	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/hazriqpedia/waybill/pkg/ports"
	"github.com/hazriqpedia/waybill/pkg/registry"
)

// Loop runs queries against a completion client and a tool registry.
// A Loop holds no per-query state and may be shared.
type Loop struct {
	client        ports.CompletionClient
	registry      *registry.Registry
	maxIterations int
	systemPrompt  string
	outputLimit   int
	logger        *slog.Logger
	tracer        ports.Tracer
	hooks         domain.LifecycleHooks
}

// Result is the outcome of one Run.
type Result struct {
	Answer     string
	Trace      []domain.Turn
	ToolsUsed  []string
	Iterations int
}

// New creates a loop.
func New(client ports.CompletionClient, reg *registry.Registry, opts ...Option) *Loop {
	l := &Loop{
		client:        client,
		registry:      reg,
		maxIterations: DefaultMaxIterations,
		logger:        logging.NewNop(),
		tracer:        ports.NopTracer{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MaxIterations returns the round budget.
func (l *Loop) MaxIterations() int {
	return l.maxIterations
}

// Registry returns the tools available to the loop.
func (l *Loop) Registry() *registry.Registry {
	return l.registry
}

// Run answers query. History, if any, precedes the query in every request.
// On exhaustion the partial result is returned along with the error.
func (l *Loop) Run(ctx context.Context, query string, history []domain.Turn) (res *Result, err error) {
	ctx, finish := l.tracer.StartSpan(ctx, "agent.run", map[string]any{
		"max_iterations": l.maxIterations,
		"history":        len(history),
	})
	defer func() { finish(err) }()

	res = &Result{Trace: []domain.Turn{domain.UserMessage(query)}}
	tools := l.registry.Descriptors()

	for round := 1; round <= l.maxIterations; round++ {
		res.Iterations = round
		if l.hooks.OnIteration != nil {
			l.hooks.OnIteration(ctx, &domain.IterationEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventIteration},
				Iteration: round,
				Max:       l.maxIterations,
			})
		}

		completion, err := l.complete(ctx, round, domain.CompletionRequest{
			System:  l.systemPrompt,
			History: history,
			Trace:   res.Trace,
			Tools:   tools,
		})
		if err != nil {
			l.logger.Error("completion failed", "iteration", round, "err", err)
			l.finish(ctx, domain.OutcomeFailed, round)
			return res, fmt.Errorf("%w: %w", domain.ErrCompletion, err)
		}

		if completion.IsFinal() {
			res.Answer = completion.Text
			res.Trace = append(res.Trace, domain.FinalAnswer(completion.Text))
			res.ToolsUsed = domain.ToolsUsed(res.Trace)
			l.logger.Debug("final answer", "iteration", round, "tools_used", res.ToolsUsed)
			l.finish(ctx, domain.OutcomeAnswered, round)
			return res, nil
		}

		call := *completion.ToolCall
		res.Trace = append(res.Trace, domain.NewToolCall(call))
		result := l.invoke(ctx, call)
		res.Trace = append(res.Trace, domain.NewToolResult(result))
	}

	res.ToolsUsed = domain.ToolsUsed(res.Trace)
	l.logger.Warn("iteration budget exhausted", "max_iterations", l.maxIterations, "tools_used", res.ToolsUsed)
	l.finish(ctx, domain.OutcomeExhausted, l.maxIterations)
	return res, fmt.Errorf("%w after %d rounds", domain.ErrIterationExhausted, l.maxIterations)
}

func (l *Loop) complete(ctx context.Context, round int, req domain.CompletionRequest) (domain.Completion, error) {
	ctx, finish := l.tracer.StartSpan(ctx, "provider_call", map[string]any{
		"iteration": round,
		"turns":     len(req.History) + len(req.Trace),
	})
	completion, err := l.client.Complete(ctx, req)
	finish(err)
	return completion, err
}

// invoke executes one tool call. Every failure is folded into the result.
func (l *Loop) invoke(ctx context.Context, call domain.ToolCall) domain.ToolResult {
	ctx, finish := l.tracer.StartSpan(ctx, "tool_call", map[string]any{"tool": call.Name})

	start := time.Now()
	if l.hooks.OnToolCall != nil {
		l.hooks.OnToolCall(ctx, &domain.ToolEvent{
			EventBase: domain.EventBase{Timestamp: start, Type: domain.EventToolCall},
			ToolName:  call.Name,
			Input:     call.Args,
		})
	}

	result := domain.ToolResult{ID: call.ID, Name: call.Name}
	var err error
	if !l.registry.Has(call.Name) {
		err = fmt.Errorf("%w: %s", domain.ErrToolNotFound, call.Name)
		result.Output = fmt.Sprintf("tool not found: %s. Available tools: %s", call.Name, strings.Join(l.registry.Names(), ", "))
		result.IsError = true
		l.logger.Warn("model requested unknown tool", "tool", call.Name)
	} else {
		var out string
		out, err = l.registry.Execute(ctx, call)
		if err != nil {
			result.Output = "error: " + err.Error()
			result.IsError = true
			l.logger.Warn("tool failed", "tool", call.Name, "err", err)
		} else {
			result.Output = limitToolOutput(out, l.outputLimit)
			l.logger.Debug("tool returned", "tool", call.Name, "args", call.Args)
		}
	}
	l.tracer.Event(ctx, "tool_result", map[string]any{"is_error": result.IsError, "bytes": len(result.Output)})
	finish(err)

	if l.hooks.OnToolReturn != nil {
		l.hooks.OnToolReturn(ctx, &domain.ToolEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventToolReturn},
			ToolName:  call.Name,
			Input:     call.Args,
			Output:    result.Output,
			IsError:   result.IsError,
			Duration:  time.Since(start),
		})
	}
	return result
}

func (l *Loop) finish(ctx context.Context, outcome domain.Outcome, iterations int) {
	if l.hooks.OnFinish == nil {
		return
	}
	l.hooks.OnFinish(ctx, &domain.FinishEvent{
		EventBase:  domain.EventBase{Timestamp: time.Now(), Type: domain.EventFinish},
		Outcome:    outcome,
		Iterations: iterations,
	})
}

func limitToolOutput(out string, limit int) string {
	if limit <= 0 {
		return out
	}
	n := utf8.RuneCountInString(out)
	if n <= limit {
		return out
	}
	runes := []rune(out)
	return fmt.Sprintf("%s... and %d more characters. The tool output was truncated because it is too long.", string(runes[:limit]), n-limit)
}

// IsExhausted reports whether err means the round budget ran out.
func IsExhausted(err error) bool {
	return errors.Is(err, domain.ErrIterationExhausted)
}
