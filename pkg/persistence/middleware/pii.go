package middleware

import (
	"context"
	"regexp"

	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/hazriqpedia/waybill/pkg/ports"
)

// Mask replaces masked argument values.
const Mask = "***"

// PIIConfig lists what is masked before turns are stored.
type PIIConfig struct {
	// ArgKeys match names of tool arguments, e.g. "^postal_code$".
	ArgKeys []string
	// Values match substrings of turn text, e.g. `\b\d{5}\b`.
	Values []string
}

type piiMiddleware struct {
	next   ports.HistoryStore
	keys   []*regexp.Regexp
	values []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks matching tool arguments and
// text before they reach the store. Loads are returned as stored.
func NewPIIMiddleware(config PIIConfig) (Middleware, error) {
	keys, err := compileAll(config.ArgKeys)
	if err != nil {
		return nil, err
	}
	values, err := compileAll(config.Values)
	if err != nil {
		return nil, err
	}
	return func(next ports.HistoryStore) ports.HistoryStore {
		return &piiMiddleware{next: next, keys: keys, values: values}
	}, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled[i] = re
	}
	return compiled, nil
}

func (m *piiMiddleware) Append(ctx context.Context, conversationID string, turns ...domain.Turn) error {
	// The caller's turns are still in use by the loop; mask copies.
	masked := make([]domain.Turn, len(turns))
	for i, t := range turns {
		if t.Args != nil {
			t.Args = deepCopyMap(t.Args)
			maskMap(t.Args, m.keys)
		}
		for _, re := range m.values {
			t.Text = re.ReplaceAllString(t.Text, Mask)
		}
		masked[i] = t
	}
	return m.next.Append(ctx, conversationID, masked...)
}

func (m *piiMiddleware) Load(ctx context.Context, conversationID string, limit int) ([]domain.Turn, error) {
	return m.next.Load(ctx, conversationID, limit)
}

func (m *piiMiddleware) Delete(ctx context.Context, conversationID string) error {
	return m.next.Delete(ctx, conversationID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(sub)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			maskMap(sub, patterns)
			continue
		}
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				break
			}
		}
	}
}
