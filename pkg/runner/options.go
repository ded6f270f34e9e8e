package runner

import (
	"log/slog"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithHandler configures a custom IOHandler.
func WithHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithConversationID sets the conversation the shell speaks in.
func WithConversationID(id string) Option {
	return func(r *Runner) {
		r.ConversationID = id
	}
}

// WithGreeting sets the line printed when the shell starts. Empty disables it.
func WithGreeting(greeting string) Option {
	return func(r *Runner) {
		r.Greeting = greeting
	}
}

// WithFarewell sets the line printed on exit.
func WithFarewell(farewell string) Option {
	return func(r *Runner) {
		r.Farewell = farewell
	}
}

// WithVerbose prints the tools used after each answer.
func WithVerbose(verbose bool) Option {
	return func(r *Runner) {
		r.Verbose = verbose
	}
}
