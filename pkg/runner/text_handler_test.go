package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/hazriqpedia/waybill"
	"github.com/hazriqpedia/waybill/pkg/domain"
)

func TestTextHandler_Input(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader("  my user input  \n"), out)

	val, err := h.Input(context.Background())
	if err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	if val != "my user input" {
		t.Errorf("expected 'my user input', got %q", val)
	}
	if out.String() != DefaultUserPrompt {
		t.Errorf("expected prompt %q, got %q", DefaultUserPrompt, out.String())
	}

	if _, err := h.Input(context.Background()); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestTextHandler_InputCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	h := NewTextHandler(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.Input(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTextHandler_ReplyRendered(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader(""), out, WithTextHandlerRenderer(func(s string) (string, error) {
		return "Rendered: " + s, nil
	}))

	reply := &waybill.Reply{Shipment: &domain.ShipmentResponse{Response: "Hello"}}
	if err := h.Reply(context.Background(), reply); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if got := out.String(); got != "Rendered: Hello\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestFormatReply_Research(t *testing.T) {
	reply := &waybill.Reply{Research: &domain.ResearchResponse{
		Topic:   "Go",
		Result:  "A language.",
		Summary: "Short.",
		Sources: []string{"https://go.dev"},
	}}

	got := FormatReply(reply)
	for _, want := range []string{"## Go", "A language.", "**Summary:** Short.", "- https://go.dev"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
}
