package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/hazriqpedia/waybill"
)

// Default prompts of the text shell.
const (
	DefaultUserPrompt      = "User: "
	DefaultAssistantPrefix = "AI: "
)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer
	Prompt   string
	Prefix   string

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerPrompt sets the prompt printed before each read.
func WithTextHandlerPrompt(prompt string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Prompt = prompt
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
		Prompt: DefaultUserPrompt,
		Prefix: DefaultAssistantPrefix,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines in the background so Input can honour cancellation.
func (h *TextHandler) pump() {
	defer close(h.inputChan)
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			return
		}
	}
}

func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, h.Prompt)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			clean, err := SanitizeInput(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			return clean, nil
		}
	}
}

func (h *TextHandler) Output(_ context.Context, text string) error {
	_, err := fmt.Fprintln(h.Writer, h.Prefix+strings.TrimSpace(text))
	return err
}

// Reply prints the answer, rendered when a renderer is configured.
func (h *TextHandler) Reply(_ context.Context, reply *waybill.Reply) error {
	body := FormatReply(reply)
	if h.Renderer != nil {
		if rendered, err := h.Renderer(body); err == nil {
			_, err = fmt.Fprintln(h.Writer, strings.TrimRight(rendered, "\n"))
			return err
		}
	}
	_, err := fmt.Fprintln(h.Writer, h.Prefix+strings.TrimSpace(body))
	return err
}

func (h *TextHandler) SystemOutput(_ context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return err
}

// FormatReply renders a reply as markdown text.
func FormatReply(reply *waybill.Reply) string {
	if reply == nil {
		return ""
	}
	if r := reply.Research; r != nil {
		var b strings.Builder
		fmt.Fprintf(&b, "## %s\n\n%s\n\n**Summary:** %s\n", r.Topic, r.Result, r.Summary)
		if len(r.Sources) > 0 {
			b.WriteString("\n**Sources:**\n")
			for _, src := range r.Sources {
				fmt.Fprintf(&b, "- %s\n", src)
			}
		}
		return b.String()
	}
	return reply.Text()
}
