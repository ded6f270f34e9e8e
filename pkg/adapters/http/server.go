// Package http exposes an assistant over a JSON HTTP API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hazriqpedia/waybill"
	"github.com/hazriqpedia/waybill/internal/logging"
	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/hazriqpedia/waybill/pkg/session"
	"github.com/hazriqpedia/waybill/pkg/shipment"
)

// Assistant is what the API needs from waybill.Assistant.
type Assistant interface {
	Ask(ctx context.Context, conversationID, query string) (*waybill.Reply, error)
	Tools() []domain.Tool
}

// ConfirmationLookup reads shipment confirmation records.
type ConfirmationLookup interface {
	Confirmation(trackingNumber string) (shipment.Confirmation, bool)
}

// Server serves the API routes.
type Server struct {
	assistant Assistant
	sessions  *session.Manager
	shipments ConfirmationLookup
	gatherer  prometheus.Gatherer
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithSessions enables the history and reset routes.
func WithSessions(mgr *session.Manager) Option {
	return func(s *Server) {
		s.sessions = mgr
	}
}

// WithShipments enables the confirmation route.
func WithShipments(lookup ConfirmationLookup) Option {
	return func(s *Server) {
		s.shipments = lookup
	}
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// MessageRequest is the body of POST /v1/conversations/{id}/messages.
type MessageRequest struct {
	Query string `json:"query"`
}

// MessageResponse is a successful answer.
type MessageResponse struct {
	ConversationID string   `json:"conversation_id"`
	Response       any      `json:"response,omitempty"`
	Raw            string   `json:"raw"`
	ToolsUsed      []string `json:"tools_used"`
	Iterations     int      `json:"iterations"`
}

// ConfirmationResponse is a shipment confirmation record.
type ConfirmationResponse struct {
	TrackingNumber string `json:"tracking_number"`
	shipment.Confirmation
}

type errorResponse struct {
	Error string `json:"error"`
	Raw   string `json:"raw,omitempty"`
}

// NewHandler builds the router. It fails only if the embedded OpenAPI document is invalid.
func NewHandler(assistant Assistant, opts ...Option) (http.Handler, error) {
	s := &Server{
		assistant: assistant,
		gatherer:  prometheus.DefaultGatherer,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	doc, err := Spec()
	if err != nil {
		return nil, err
	}
	specRouter, err := newRouter(doc)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.health)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, doc)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Use(validateRequests(specRouter))
		r.Get("/tools", s.listTools)
		r.Post("/conversations/{id}/messages", s.sendMessage)
		r.Get("/conversations/{id}/messages", s.history)
		r.Delete("/conversations/{id}", s.reset)
		r.Get("/shipments/{id}/confirmation", s.confirmation)
	})
	return r, nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listTools(w http.ResponseWriter, _ *http.Request) {
	type toolJSON struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Parameters  map[string]any `json:"parameters"`
	}
	tools := s.assistant.Tools()
	out := make([]toolJSON, 0, len(tools))
	for _, t := range tools {
		out = append(out, toolJSON{Name: t.Name, Description: t.Description, Parameters: t.JSONSchema()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	query := strings.TrimSpace(body.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required", "")
		return
	}

	reply, err := s.assistant.Ask(r.Context(), id, query)
	if err != nil {
		status := statusFor(err)
		raw := ""
		if reply != nil {
			raw = reply.Raw
		}
		if status >= http.StatusInternalServerError {
			s.logger.Error("ask failed", "conversation_id", id, "err", err)
		}
		writeError(w, status, err.Error(), raw)
		return
	}

	resp := MessageResponse{
		ConversationID: id,
		Raw:            reply.Raw,
		ToolsUsed:      reply.ToolsUsed,
		Iterations:     reply.Iterations,
	}
	if resp.ToolsUsed == nil {
		resp.ToolsUsed = []string{}
	}
	switch {
	case reply.Shipment != nil:
		resp.Response = reply.Shipment
	case reply.Research != nil:
		resp.Response = reply.Research
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeError(w, http.StatusNotFound, "conversation memory is disabled", "")
		return
	}
	turns, err := s.sessions.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	if turns == nil {
		turns = []domain.Turn{}
	}
	writeJSON(w, http.StatusOK, turns)
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeError(w, http.StatusNotFound, "conversation memory is disabled", "")
		return
	}
	if err := s.sessions.Reset(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) confirmation(w http.ResponseWriter, r *http.Request) {
	id := shipment.Normalize(chi.URLParam(r, "id"))
	if s.shipments == nil {
		writeError(w, http.StatusNotFound, "shipment lookup is disabled", "")
		return
	}
	c, ok := s.shipments.Confirmation(id)
	if !ok {
		writeError(w, http.StatusNotFound, "no confirmation record for "+id, "")
		return
	}
	writeJSON(w, http.StatusOK, ConfirmationResponse{TrackingNumber: id, Confirmation: c})
}

// statusFor maps a turn error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrFormatValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrIterationExhausted):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrCompletion):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, raw string) {
	writeJSON(w, status, errorResponse{Error: msg, Raw: raw})
}
