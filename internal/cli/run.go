package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/hazriqpedia/waybill"
	"github.com/hazriqpedia/waybill/internal/presentation/tui"
	"github.com/hazriqpedia/waybill/pkg/runner"
)

// Profiles accepted by RunSession.
const (
	ProfileShipment = "shipment"
	ProfileResearch = "research"
)

// ResearchGreeting opens an interactive research session.
const ResearchGreeting = "What can I help you research?"

// Session describes one chat, interactive or single-shot.
type Session struct {
	Profile        string
	ConversationID string
	Query          string // Non-empty answers once and returns
	JSON           bool
	Verbose        bool
	In             io.Reader
	Out            io.Writer
}

// NewHandler picks the IO handler: NDJSON when asked, glamour-rendered text
// on a terminal, plain text otherwise.
func NewHandler(in io.Reader, out io.Writer, jsonMode bool) runner.IOHandler {
	if jsonMode {
		return runner.NewJSONHandler(in, out)
	}
	width, ok := terminalWidth(out)
	if !ok {
		return runner.NewTextHandler(in, out)
	}
	render, err := tui.NewRenderer(width)
	if err != nil {
		return runner.NewTextHandler(in, out)
	}
	return runner.NewTextHandler(in, out, runner.WithTextHandlerRenderer(render))
}

func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80, true
	}
	return width, true
}

// RunSession builds the assistant for sess.Profile and drives it until the
// user leaves, or answers sess.Query once.
func (s *Stack) RunSession(ctx context.Context, sess Session) error {
	if sess.In == nil {
		sess.In = os.Stdin
	}
	if sess.Out == nil {
		sess.Out = os.Stdout
	}
	if sess.ConversationID == "" {
		sess.ConversationID = "default"
	}
	verbose := sess.Verbose || s.Config.Agent.Verbose

	handler := NewHandler(sess.In, sess.Out, sess.JSON)
	var extra []waybill.Option
	if verbose {
		extra = append(extra, waybill.WithLifecycleHooks(runner.ToolEcho(handler)))
	}

	var (
		assistant *waybill.Assistant
		greeting  string
		err       error
	)
	switch sess.Profile {
	case ProfileShipment, "":
		assistant, _, err = s.ShipmentAssistant(extra...)
		greeting = runner.DefaultGreeting
	case ProfileResearch:
		assistant, err = s.ResearchAssistant(extra...)
		greeting = ResearchGreeting
	default:
		return fmt.Errorf("unknown profile %q", sess.Profile)
	}
	if err != nil {
		return err
	}

	r := runner.New(assistant,
		runner.WithHandler(handler),
		runner.WithLogger(s.Logger),
		runner.WithConversationID(sess.ConversationID),
		runner.WithGreeting(greeting),
		runner.WithVerbose(verbose),
	)

	if sess.Query != "" {
		return r.RunOnce(ctx, sess.Query)
	}
	if _, tty := terminalWidth(sess.Out); tty && !sess.JSON {
		tui.PrintBanner(sess.Out, assistant.Profile().Name+" assistant, type 'exit' to leave")
	}
	return r.Run(ctx)
}
