package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/hazriqpedia/waybill"
)

// Event types written by JSONHandler.
const (
	EventMessage = "message"
	EventReply   = "reply"
	EventSystem  = "system"
)

// Event is one JSON line emitted by JSONHandler.
type Event struct {
	Type       string   `json:"type"`
	Text       string   `json:"text,omitempty"`
	Response   any      `json:"response,omitempty"`
	Raw        string   `json:"raw,omitempty"`
	ToolsUsed  []string `json:"tools_used,omitempty"`
	Iterations int      `json:"iterations,omitempty"`
}

// JSONHandler implements the IOHandler interface for JSON-Lines communication.
// Input lines may be a JSON string, an object with a "query" field or plain text.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder

	mu sync.Mutex
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

// Input reads the next query. Lines that fail sanitization are reported as
// system events and skipped.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := h.Reader.ReadString('\n')
		if err != nil && (err != io.EOF || text == "") {
			return "", err
		}
		text = strings.TrimSpace(text)
		clean, err := SanitizeInput(text)
		if err == nil {
			clean, err = SanitizeInput(decodeQuery(clean))
		}
		if err != nil {
			if emitErr := h.emit(Event{Type: EventSystem, Text: "Error: " + err.Error()}); emitErr != nil {
				return "", emitErr
			}
			continue
		}
		return clean, nil
	}
}

func decodeQuery(text string) string {
	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		return val
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(text), &req); err == nil && req.Query != "" {
		return req.Query
	}
	return text
}

func (h *JSONHandler) emit(ev Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(ev)
}

func (h *JSONHandler) Output(_ context.Context, text string) error {
	return h.emit(Event{Type: EventMessage, Text: text})
}

// Reply emits the structured record, or only the raw text when validation failed.
func (h *JSONHandler) Reply(_ context.Context, reply *waybill.Reply) error {
	ev := Event{
		Type:       EventReply,
		Raw:        reply.Raw,
		ToolsUsed:  reply.ToolsUsed,
		Iterations: reply.Iterations,
	}
	switch {
	case reply.Shipment != nil:
		ev.Response = reply.Shipment
	case reply.Research != nil:
		ev.Response = reply.Research
	}
	return h.emit(ev)
}

func (h *JSONHandler) SystemOutput(_ context.Context, msg string) error {
	return h.emit(Event{Type: EventSystem, Text: msg})
}
