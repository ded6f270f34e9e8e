package waybill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazriqpedia/waybill/internal/logging"
	"github.com/hazriqpedia/waybill/pkg/adapters/memory"
	"github.com/hazriqpedia/waybill/pkg/agent"
	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/hazriqpedia/waybill/pkg/ports"
	"github.com/hazriqpedia/waybill/pkg/registry"
	"github.com/hazriqpedia/waybill/pkg/research"
	"github.com/hazriqpedia/waybill/pkg/schema"
	"github.com/hazriqpedia/waybill/pkg/session"
	"github.com/hazriqpedia/waybill/pkg/shipment"
)

// Profile describes an assistant flavour.
type Profile struct {
	Name         string
	Kind         schema.Kind
	SystemPrompt string
	Memory       bool
}

var (
	// ShipmentProfile is the logistics assistant.
	ShipmentProfile = Profile{
		Name:         "shipment",
		Kind:         schema.KindShipment,
		SystemPrompt: shipment.SystemPrompt,
		Memory:       true,
	}

	// ResearchProfile is the single-shot research assistant.
	ResearchProfile = Profile{
		Name:         "research",
		Kind:         schema.KindResearch,
		SystemPrompt: research.SystemPrompt,
		Memory:       false,
	}
)

// Reply is the outcome of one Ask.
type Reply struct {
	Raw        string                   // Final text as produced by the model
	Shipment   *domain.ShipmentResponse // Set for the shipment profile
	Research   *domain.ResearchResponse // Set for the research profile
	Trace      []domain.Turn
	ToolsUsed  []string // Tools actually called, from the trace
	Iterations int
}

// Text returns the user-facing answer, falling back to the raw text.
func (r *Reply) Text() string {
	switch {
	case r == nil:
		return ""
	case r.Shipment != nil:
		return r.Shipment.Response
	case r.Research != nil:
		return fmt.Sprintf("%s\n\n%s", r.Research.Summary, r.Research.Result)
	}
	return r.Raw
}

// Assistant answers queries with a tool loop and a response validator.
type Assistant struct {
	profile  Profile
	loop     *agent.Loop
	registry *registry.Registry
	sessions *session.Manager
	logger   *slog.Logger
}

// New assembles an assistant for profile over reg.
func New(profile Profile, client ports.CompletionClient, reg *registry.Registry, opts ...Option) (*Assistant, error) {
	if client == nil {
		return nil, errors.New("completion client is required")
	}
	if reg == nil {
		return nil, errors.New("tool registry is required")
	}

	s := &settings{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	prompt := profile.SystemPrompt
	if s.systemPrompt != "" {
		prompt = s.systemPrompt
	}
	instructions, err := schema.FormatInstructions(profile.Kind)
	if err != nil {
		return nil, err
	}
	prompt = strings.TrimSpace(prompt) + "\n\n" + instructions

	a := &Assistant{
		profile:  profile,
		registry: reg,
		logger:   s.logger,
		loop:     agent.New(client, reg, append([]agent.Option{agent.WithSystemPrompt(prompt)}, s.loopOpts...)...),
	}

	useMemory := profile.Memory
	if s.memory != nil {
		useMemory = *s.memory
	}
	if useMemory {
		a.sessions = s.sessions
		if a.sessions == nil {
			store := s.store
			if store == nil {
				store = memory.NewStore()
			}
			a.sessions = session.NewManager(store, s.sessionOpts...)
		}
	}
	return a, nil
}

// NewShipmentAssistant creates the logistics assistant over svc.
func NewShipmentAssistant(client ports.CompletionClient, svc *shipment.Service, opts ...Option) (*Assistant, error) {
	reg, err := registry.New(shipment.Tools(svc)...)
	if err != nil {
		return nil, err
	}
	return New(ShipmentProfile, client, reg, opts...)
}

// NewResearchAssistant creates the research assistant over tools.
func NewResearchAssistant(client ports.CompletionClient, tools research.Toolset, opts ...Option) (*Assistant, error) {
	reg, err := registry.New(tools.Tools()...)
	if err != nil {
		return nil, err
	}
	return New(ResearchProfile, client, reg, opts...)
}

// Profile returns the assistant's profile.
func (a *Assistant) Profile() Profile {
	return a.profile
}

// Tools returns the descriptors of the registered tools.
func (a *Assistant) Tools() []domain.Tool {
	return a.registry.Descriptors()
}

// Registry returns the tool registry.
func (a *Assistant) Registry() *registry.Registry {
	return a.registry
}

// Sessions returns the memory manager, nil when memory is off.
func (a *Assistant) Sessions() *session.Manager {
	return a.sessions
}

// Ask answers query within a conversation.
//
// On a validation failure the reply carries the raw text and the error matches
// domain.ErrFormatValidation. On exhaustion the reply carries the partial trace
// and the error matches domain.ErrIterationExhausted.
func (a *Assistant) Ask(ctx context.Context, conversationID, query string) (*Reply, error) {
	if a.sessions == nil {
		return a.ask(ctx, query, nil)
	}

	var reply *Reply
	err := a.sessions.WithLock(ctx, conversationID, func(ctx context.Context) error {
		history, err := a.sessions.HistoryLocked(ctx, conversationID)
		if err != nil {
			return err
		}

		var askErr error
		reply, askErr = a.ask(ctx, query, history)
		if reply != nil && reply.Raw != "" {
			// Answered turns are remembered even when the format was off.
			if err := a.sessions.RecordLocked(ctx, conversationID, reply.Trace); err != nil {
				a.logger.Warn("failed to record conversation", "conversation_id", conversationID, "err", err)
			}
		}
		return askErr
	})
	return reply, err
}

func (a *Assistant) ask(ctx context.Context, query string, history []domain.Turn) (*Reply, error) {
	res, err := a.loop.Run(ctx, query, history)
	if res == nil {
		return nil, err
	}

	reply := &Reply{
		Raw:        res.Answer,
		Trace:      res.Trace,
		ToolsUsed:  res.ToolsUsed,
		Iterations: res.Iterations,
	}
	if err != nil {
		return reply, err
	}

	names := a.registry.Names()
	switch a.profile.Kind {
	case schema.KindShipment:
		reply.Shipment, err = schema.ParseShipment(res.Answer, names...)
	case schema.KindResearch:
		reply.Research, err = schema.ParseResearch(res.Answer, names...)
	default:
		err = fmt.Errorf("unsupported response kind %q", a.profile.Kind)
	}
	if err != nil {
		a.logger.Debug("final answer failed validation", "profile", a.profile.Name, "err", err)
		return reply, err
	}
	return reply, nil
}
