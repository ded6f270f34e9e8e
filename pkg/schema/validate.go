package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Kind names a structured response shape.
type Kind string

const (
	KindShipment Kind = "shipment"
	KindResearch Kind = "research"
)

// Document returns the raw JSON schema of a kind.
func Document(kind Kind) ([]byte, error) {
	data, err := schemaFS.ReadFile("schemas/" + string(kind) + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown response kind %q", kind)
	}
	return data, nil
}

var (
	compiledMu sync.Mutex
	compiled   = map[Kind]*gojsonschema.Schema{}
)

func compile(kind Kind) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if s, ok := compiled[kind]; ok {
		return s, nil
	}
	doc, err := Document(kind)
	if err != nil {
		return nil, err
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s schema: %w", kind, err)
	}
	compiled[kind] = s
	return s, nil
}

var fenced = regexp.MustCompile("(?s)^```(?:json|JSON)?[ \t]*\r?\n(.*?)\r?\n?```$")

// unwrap trims whitespace and strips a single surrounding code fence.
func unwrap(text string) string {
	trimmed := strings.TrimSpace(text)
	if m := fenced.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// Parse validates text against the schema of kind and decodes it into T.
// On failure the zero T is returned with a *ValidationError.
func Parse[T any](text string, kind Kind) (T, error) {
	var zero T

	s, err := compile(kind)
	if err != nil {
		return zero, err
	}

	body := unwrap(text)
	fail := func(vs ...Violation) (T, error) {
		return zero, &ValidationError{Kind: kind, Raw: text, Violations: vs}
	}

	if !strings.HasPrefix(body, "{") || !json.Valid([]byte(body)) {
		return fail(Violation{Field: "(root)", Reason: "expected a single JSON object"})
	}

	result, err := s.Validate(gojsonschema.NewStringLoader(body))
	if err != nil {
		return fail(Violation{Field: "(root)", Reason: err.Error()})
	}
	if !result.Valid() {
		vs := make([]Violation, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			vs = append(vs, Violation{Field: re.Field(), Reason: re.Description()})
		}
		return fail(vs...)
	}

	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return fail(Violation{Field: "(root)", Reason: err.Error()})
	}
	if _, err := dec.Token(); err != io.EOF {
		return fail(Violation{Field: "(root)", Reason: "unexpected data after the JSON object"})
	}
	return out, nil
}

// ParseShipment parses a shipment assistant answer.
// When allowedTools is not empty every tools_used entry must be one of them.
func ParseShipment(text string, allowedTools ...string) (*domain.ShipmentResponse, error) {
	resp, err := Parse[domain.ShipmentResponse](text, KindShipment)
	if err != nil {
		return nil, err
	}
	if err := checkTools(KindShipment, text, resp.ToolsUsed, allowedTools); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ParseResearch parses a research assistant answer.
// When allowedTools is not empty every tools_used entry must be one of them.
func ParseResearch(text string, allowedTools ...string) (*domain.ResearchResponse, error) {
	resp, err := Parse[domain.ResearchResponse](text, KindResearch)
	if err != nil {
		return nil, err
	}
	if err := checkTools(KindResearch, text, resp.ToolsUsed, allowedTools); err != nil {
		return nil, err
	}
	return &resp, nil
}

func checkTools(kind Kind, raw string, used, allowed []string) error {
	if len(allowed) == 0 {
		return nil
	}
	var vs []Violation
	for i, name := range used {
		if !slices.Contains(allowed, name) {
			vs = append(vs, Violation{
				Field:  fmt.Sprintf("tools_used.%d", i),
				Reason: fmt.Sprintf("unknown tool %q", name),
			})
		}
	}
	if len(vs) > 0 {
		return &ValidationError{Kind: kind, Raw: raw, Violations: vs}
	}
	return nil
}

// FormatInstructions renders the instructions appended to a system prompt so the
// model answers with a document of the given kind.
func FormatInstructions(kind Kind) (string, error) {
	doc, err := Document(kind)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Your final answer must be a single JSON object that conforms to the JSON schema below. ")
	b.WriteString("Return only the JSON object, with no other text before or after it. ")
	b.WriteString(`List in "tools_used" the names of the tools you called, or an empty array if you called none.`)
	b.WriteString("\n\n```json\n")
	b.Write(bytes.TrimSpace(doc))
	b.WriteString("\n```")
	return b.String(), nil
}
