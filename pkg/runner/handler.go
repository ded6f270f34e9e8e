package runner

import (
	"context"

	"github.com/hazriqpedia/waybill"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (structured) modes.
type IOHandler interface {
	// Input reads one line from the user. It returns io.EOF at end of input.
	Input(ctx context.Context) (string, error)

	// Output presents assistant text such as greetings and apologies.
	Output(ctx context.Context, text string) error

	// Reply presents a validated or raw assistant answer.
	Reply(ctx context.Context, reply *waybill.Reply) error

	// SystemOutput presents a meta-message (diagnostics, tool activity).
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms text before it is printed, e.g. markdown to ANSI.
type ContentRenderer func(string) (string, error)
