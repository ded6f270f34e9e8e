package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ErrDuplicateTool is returned when two entries share a name.
var ErrDuplicateTool = errors.New("duplicate tool")

// Handler defines the signature for a tool implementation.
// Domain failures are returned as result text with a nil error;
// a non-nil error is reserved for faults.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Entry binds a descriptor to its handler.
type Entry struct {
	Tool    domain.Tool
	Handler Handler
}

// Registry manages the available tools.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]Entry
}

// New creates a registry holding the given entries, in order.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if err := r.Register(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool to the registry.
// Names must be unique and non-empty.
func (r *Registry) Register(e Entry) error {
	name := e.Tool.Name
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("register tool: empty name")
	}
	if e.Handler == nil {
		return fmt.Errorf("register tool %q: nil handler", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.entries[name] = e
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// Has reports whether a tool is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Descriptors returns tool descriptors in registration order.
func (r *Registry) Descriptors() []domain.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tools := make([]domain.Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.entries[name].Tool)
	}
	return tools
}

// Execute looks up a tool by name, checks required arguments and runs it.
func (r *Registry) Execute(ctx context.Context, call domain.ToolCall) (string, error) {
	e, ok := r.Lookup(call.Name)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrToolNotFound, call.Name)
	}

	if missing := missingRequired(e.Tool, call.Args); len(missing) > 0 {
		return "", fmt.Errorf("%w: %s requires %s", domain.ErrInvalidArguments, call.Name, strings.Join(missing, ", "))
	}

	args := call.Args
	if args == nil {
		args = map[string]any{}
	}
	return e.Handler(ctx, args)
}

func missingRequired(tool domain.Tool, args map[string]any) []string {
	var missing []string
	for _, p := range tool.Parameters {
		if !p.Required {
			continue
		}
		v, ok := args[p.Name]
		if !ok || v == nil {
			missing = append(missing, p.Name)
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			missing = append(missing, p.Name)
		}
	}
	sort.Strings(missing)
	return missing
}

// Typed adapts a function taking a decoded argument struct into a Handler.
// Arguments are decoded with mapstructure using weak typing, so "5" and 5 both fill an int.
func Typed[T any](fn func(ctx context.Context, args T) (string, error)) Handler {
	return func(ctx context.Context, raw map[string]any) (string, error) {
		var args T
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &args,
			WeaklyTypedInput: true,
			TagName:          "json",
		})
		if err != nil {
			return "", err
		}
		if err := dec.Decode(raw); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrInvalidArguments, err)
		}
		return fn(ctx, args)
	}
}
