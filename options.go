package waybill

import (
	"log/slog"

	"github.com/hazriqpedia/waybill/pkg/agent"
	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/hazriqpedia/waybill/pkg/ports"
	"github.com/hazriqpedia/waybill/pkg/session"
)

// Option defines a functional option for configuring an Assistant.
type Option func(*settings)

type settings struct {
	loopOpts     []agent.Option
	logger       *slog.Logger
	memory       *bool
	store        ports.HistoryStore
	sessions     *session.Manager
	sessionOpts  []session.Option
	systemPrompt string
}

// WithMaxIterations sets the round budget of the tool loop.
func WithMaxIterations(n int) Option {
	return func(s *settings) {
		s.loopOpts = append(s.loopOpts, agent.WithMaxIterations(n))
	}
}

// WithLifecycleHooks registers observability hooks on the tool loop.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *settings) {
		s.loopOpts = append(s.loopOpts, agent.WithLifecycleHooks(hooks))
	}
}

// WithTracer sets the tracer of the tool loop.
func WithTracer(tracer ports.Tracer) Option {
	return func(s *settings) {
		s.loopOpts = append(s.loopOpts, agent.WithTracer(tracer))
	}
}

// WithToolOutputLimit truncates long tool results.
func WithToolOutputLimit(runes int) Option {
	return func(s *settings) {
		s.loopOpts = append(s.loopOpts, agent.WithToolOutputLimit(runes))
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
		s.loopOpts = append(s.loopOpts, agent.WithLogger(logger))
		s.sessionOpts = append(s.sessionOpts, session.WithLogger(logger))
	}
}

// WithMemory overrides the profile's memory setting.
func WithMemory(enabled bool) Option {
	return func(s *settings) {
		s.memory = &enabled
	}
}

// WithHistoryStore sets where conversation memory is kept (in-process by default).
func WithHistoryStore(store ports.HistoryStore) Option {
	return func(s *settings) {
		s.store = store
	}
}

// WithSessionManager shares an existing memory manager.
func WithSessionManager(mgr *session.Manager) Option {
	return func(s *settings) {
		s.sessions = mgr
	}
}

// WithHistoryWindow sets how many remembered turns are replayed.
func WithHistoryWindow(turns int) Option {
	return func(s *settings) {
		s.sessionOpts = append(s.sessionOpts, session.WithWindow(turns))
	}
}

// WithLocker enables distributed locking of conversations.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *settings) {
		s.sessionOpts = append(s.sessionOpts, session.WithLocker(locker))
	}
}

// WithSystemPrompt replaces the profile's instructions. Format instructions are still appended.
func WithSystemPrompt(prompt string) Option {
	return func(s *settings) {
		s.systemPrompt = prompt
	}
}
