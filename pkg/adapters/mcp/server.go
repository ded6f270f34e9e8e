// Package mcp exposes the tool registry, and optionally the assistant, as an MCP server.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazriqpedia/waybill"
	"github.com/hazriqpedia/waybill/internal/logging"
	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/hazriqpedia/waybill/pkg/registry"
)

// ToolAsk is the name of the tool that forwards a query to the assistant.
const ToolAsk = "ask_assistant"

// ToolsResourceURI lists the registry's descriptors.
const ToolsResourceURI = "waybill://tools"

// Asker answers one query within a conversation.
type Asker interface {
	Ask(ctx context.Context, conversationID, query string) (*waybill.Reply, error)
}

// Server wraps a registry and exposes it as an MCP server.
type Server struct {
	registry  *registry.Registry
	assistant Asker
	logger    *slog.Logger
	version   string
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithAssistant adds the ask_assistant tool.
func WithAssistant(a Asker) Option {
	return func(s *Server) {
		s.assistant = a
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version reported to clients.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewServer creates a new MCP server over reg.
func NewServer(reg *registry.Registry, opts ...Option) *Server {
	s := &Server{
		registry: reg,
		logger:   logging.NewNop(),
		version:  "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("waybill-mcp", s.version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
// baseURL is what clients are told to post messages to.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sse.SSEHandler())
	mux.Handle("/message", sse.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "addr", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("MCP SSE shutdown: %w", err)
		}
		return nil
	}
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	for _, t := range s.registry.Descriptors() {
		s.mcpServer.AddTool(toMCPTool(t), s.toolHandler(t.Name))
	}

	if s.assistant != nil {
		s.mcpServer.AddTool(mcp.NewTool(ToolAsk,
			mcp.WithDescription("Ask the assistant a question. It may call the other tools and answers with a JSON record."),
			mcp.WithString("query", mcp.Required(), mcp.Description("The user's message")),
			mcp.WithString("conversation_id", mcp.Description("Conversation to continue (default: mcp)")),
		), s.handleAsk)
	}
}

func toMCPTool(t domain.Tool) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(t.Description)}
	for _, p := range t.Parameters {
		popts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			popts = append(popts, mcp.Required())
		}
		switch p.Type {
		case "integer", "number":
			opts = append(opts, mcp.WithNumber(p.Name, popts...))
		case "boolean":
			opts = append(opts, mcp.WithBoolean(p.Name, popts...))
		default:
			opts = append(opts, mcp.WithString(p.Name, popts...))
		}
	}
	return mcp.NewTool(t.Name, opts...)
}

func (s *Server) toolHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		call := domain.ToolCall{
			ID:   "mcp_" + uuid.NewString(),
			Name: name,
			Args: request.GetArguments(),
		}
		out, err := s.registry.Execute(ctx, call)
		if err != nil {
			s.logger.Warn("MCP tool failed", "tool", name, "err", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	query, _ := args["query"].(string)
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	id, _ := args["conversation_id"].(string)
	if id == "" {
		id = "mcp"
	}

	reply, err := s.assistant.Ask(ctx, id, query)
	switch {
	case errors.Is(err, domain.ErrFormatValidation) && reply != nil:
		// The raw text is still useful to an MCP client.
		return mcp.NewToolResultText(reply.Raw), nil
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
	}

	var record any = reply.Raw
	switch {
	case reply.Shipment != nil:
		record = reply.Shipment
	case reply.Research != nil:
		record = reply.Research
	}
	data, err := json.Marshal(record)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ToolsResourceURI, "Registered tools",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.registry.Descriptors())
		if err != nil {
			return nil, fmt.Errorf("failed to encode tools: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ToolsResourceURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
