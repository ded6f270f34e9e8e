package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hazriqpedia/waybill"
	"github.com/hazriqpedia/waybill/internal/logging"
	"github.com/hazriqpedia/waybill/pkg/adapters/openai"
	"github.com/hazriqpedia/waybill/pkg/domain"
)

// Shell messages.
const (
	DefaultGreeting = "Hello! How can I help you with your shipment today?"
	DefaultFarewell = "Exiting chat. Goodbye!"
	MsgExhausted    = "I'm sorry, I couldn't finish working on that request. Please try rephrasing it."
	MsgFailure      = "I'm sorry, I encountered an issue while processing your request. Please try again. (Error: %s)"
	MsgInterrupted  = "Interrupted."
)

// Asker answers one query within a conversation.
type Asker interface {
	Ask(ctx context.Context, conversationID, query string) (*waybill.Reply, error)
}

// Runner drives the read-ask-print loop.
type Runner struct {
	Handler        IOHandler
	Logger         *slog.Logger
	ConversationID string
	Greeting       string
	Farewell       string
	Verbose        bool

	asker Asker
}

// New creates a runner over asker with text IO on stdin/stdout.
func New(asker Asker, opts ...Option) *Runner {
	r := &Runner{
		Logger:         logging.NewNop(),
		ConversationID: "default",
		Greeting:       DefaultGreeting,
		Farewell:       DefaultFarewell,
		asker:          asker,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r
}

// IsExitCommand reports whether line ends the session.
func IsExitCommand(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "exit", "quit":
		return true
	}
	return false
}

// Run loops until an exit command, end of input, an interrupt at the prompt
// or cancellation of ctx. Per-turn errors are reported and the loop goes on.
func (r *Runner) Run(ctx context.Context) error {
	signals := NewSignalManager(ctx)
	defer signals.Stop()

	if r.Greeting != "" {
		if err := r.Handler.Output(ctx, r.Greeting); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}

	for {
		line, err := r.Handler.Input(signals.Context())
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				return nil
			case signals.Interrupted():
				r.Logger.Debug("interrupted at prompt")
				return r.Handler.Output(ctx, r.Farewell)
			case ctx.Err() != nil:
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if IsExitCommand(line) {
			return r.Handler.Output(ctx, r.Farewell)
		}

		turnCtx := signals.Context()
		_ = r.turn(turnCtx, line)
		if signals.Interrupted() {
			signals.Reset()
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// RunOnce answers a single query and returns the turn's error, if any, after reporting it.
func (r *Runner) RunOnce(ctx context.Context, query string) error {
	return r.turn(ctx, strings.TrimSpace(query))
}

func (r *Runner) turn(ctx context.Context, query string) error {
	r.Logger.Debug("user query", "conversation_id", r.ConversationID, "query", query)
	reply, err := r.asker.Ask(ctx, r.ConversationID, query)

	switch {
	case err == nil:
		if outErr := r.Handler.Reply(ctx, reply); outErr != nil {
			return outErr
		}
		if r.Verbose {
			_ = r.Handler.SystemOutput(ctx, "Tools used: "+toolList(reply.ToolsUsed))
		}
		return nil

	case errors.Is(err, domain.ErrFormatValidation):
		r.Logger.Warn("response failed validation", "conversation_id", r.ConversationID, "err", err)
		_ = r.Handler.SystemOutput(ctx, "Could not parse response: "+err.Error())
		if reply != nil && reply.Raw != "" {
			_ = r.Handler.Reply(ctx, reply)
		}

	case errors.Is(err, domain.ErrIterationExhausted):
		r.Logger.Warn("iteration budget exhausted", "conversation_id", r.ConversationID, "err", err)
		_ = r.Handler.Output(ctx, MsgExhausted)

	case errors.Is(err, context.Canceled):
		_ = r.Handler.SystemOutput(context.WithoutCancel(ctx), MsgInterrupted)

	default:
		r.Logger.Error("turn failed", "conversation_id", r.ConversationID, "err", err)
		_ = r.Handler.Output(context.WithoutCancel(ctx), fmt.Sprintf(MsgFailure, ErrorKind(err)))
	}
	return err
}

// ErrorKind names the class of a turn failure for user-facing messages.
func ErrorKind(err error) string {
	var apiErr *openai.APIError
	switch {
	case errors.As(err, &apiErr):
		return fmt.Sprintf("ProviderError %d", apiErr.StatusCode)
	case errors.Is(err, openai.ErrNoChoices):
		return "EmptyCompletion"
	case errors.Is(err, context.DeadlineExceeded):
		return "Timeout"
	case errors.Is(err, domain.ErrCompletion):
		return "ProviderError"
	default:
		return "InternalError"
	}
}

func toolList(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
