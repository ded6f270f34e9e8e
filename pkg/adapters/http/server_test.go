package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazriqpedia/waybill"
	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/hazriqpedia/waybill/pkg/observability"
	"github.com/hazriqpedia/waybill/pkg/ports"
	"github.com/hazriqpedia/waybill/pkg/shipment"
)

// fakeAssistant returns a canned outcome.
type fakeAssistant struct {
	reply *waybill.Reply
	err   error
	got   []string
}

func (f *fakeAssistant) Ask(_ context.Context, id, query string) (*waybill.Reply, error) {
	f.got = append(f.got, id+":"+query)
	return f.reply, f.err
}

func (f *fakeAssistant) Tools() []domain.Tool {
	return []domain.Tool{{Name: "track_shipment", Description: "Track", Parameters: []domain.Parameter{
		{Name: "tracking_number", Type: "string", Required: true},
	}}}
}

func newTestServer(t *testing.T, a Assistant, opts ...Option) *httptest.Server {
	t.Helper()
	h, err := NewHandler(a, opts...)
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func postMessage(t *testing.T, srv *httptest.Server, id, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/v1/conversations/"+id+"/messages", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestSpec_IsValid(t *testing.T) {
	doc, err := Spec()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/v1/conversations/{id}/messages"))
}

func TestSendMessage_OK(t *testing.T) {
	a := &fakeAssistant{reply: &waybill.Reply{
		Raw:        `{"response":"ok","tools_used":["track_shipment"]}`,
		Shipment:   &domain.ShipmentResponse{Response: "ok", ToolsUsed: []string{"track_shipment"}},
		ToolsUsed:  []string{"track_shipment"},
		Iterations: 2,
	}}
	srv := newTestServer(t, a)

	resp, out := postMessage(t, srv, "c1", `{"query":"Where is AWB-12345?"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "c1", out["conversation_id"])
	assert.Equal(t, "ok", out["response"].(map[string]any)["response"])
	assert.EqualValues(t, 2, out["iterations"])
	assert.Equal(t, []string{"c1:Where is AWB-12345?"}, a.got)
}

func TestSendMessage_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		reply  *waybill.Reply
		err    error
		status int
		raw    string
	}{
		{"Validation", &waybill.Reply{Raw: "plain"}, fmt.Errorf("%w: bad", domain.ErrFormatValidation), http.StatusUnprocessableEntity, "plain"},
		{"Exhausted", &waybill.Reply{}, fmt.Errorf("%w after 5 rounds", domain.ErrIterationExhausted), http.StatusServiceUnavailable, ""},
		{"Provider", nil, fmt.Errorf("%w: 429", domain.ErrCompletion), http.StatusBadGateway, ""},
		{"Other", nil, fmt.Errorf("store down"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeAssistant{reply: tt.reply, err: tt.err})
			resp, out := postMessage(t, srv, "c1", `{"query":"hi"}`)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, out["error"])
			if tt.raw != "" {
				assert.Equal(t, tt.raw, out["raw"])
			}
		})
	}
}

func TestSendMessage_RejectsEmptyQuery(t *testing.T) {
	a := &fakeAssistant{}
	srv := newTestServer(t, a)

	for _, body := range []string{`{}`, `{"query":""}`, `not json`} {
		resp, _ := postMessage(t, srv, "c1", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
	assert.Empty(t, a.got)
}

func TestListToolsAndHealth(t *testing.T) {
	srv := newTestServer(t, &fakeAssistant{})

	resp, err := http.Get(srv.URL + "/v1/tools")
	require.NoError(t, err)
	defer resp.Body.Close()
	var tools []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tools))
	require.Len(t, tools, 1)
	assert.Equal(t, "track_shipment", tools[0]["name"])
	assert.Equal(t, []any{"tracking_number"}, tools[0]["parameters"].(map[string]any)["required"])

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)

	spec, err := http.Get(srv.URL + "/openapi.json")
	require.NoError(t, err)
	defer spec.Body.Close()
	var doc map[string]any
	require.NoError(t, json.NewDecoder(spec.Body).Decode(&doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
}

// End to end: real assistant, scripted model, memory and metrics.
func TestConversationFlow(t *testing.T) {
	steps := []domain.Completion{
		{ToolCall: &domain.ToolCall{ID: "1", Name: shipment.ToolConfirmReschedule, Args: map[string]any{
			"tracking_number": "AWB-12345", "new_date": "2025-05-16", "postal_code": "56000",
		}}},
		{Text: `{"response":"Rescheduled to 2025-05-16.","tools_used":["confirm_reschedule"]}`},
	}
	client := ports.CompletionFunc(func(context.Context, domain.CompletionRequest) (domain.Completion, error) {
		next := steps[0]
		steps = steps[1:]
		return next, nil
	})

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	svc := shipment.NewService(shipment.DefaultSeed(), shipment.WithPostalValidation(true))
	a, err := waybill.NewShipmentAssistant(client, svc, waybill.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, err)

	srv := newTestServer(t, a, WithSessions(a.Sessions()), WithShipments(svc), WithGatherer(reg))

	resp, _ := postMessage(t, srv, "c9", `{"query":"Move AWB-12345 to 2025-05-16, postal 56000"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	conf, err := http.Get(srv.URL + "/v1/shipments/awb-12345/confirmation")
	require.NoError(t, err)
	defer conf.Body.Close()
	var c map[string]string
	require.NoError(t, json.NewDecoder(conf.Body).Decode(&c))
	assert.Equal(t, "AWB-12345", c["tracking_number"])
	assert.Equal(t, "2025-05-16", c["new_date"])
	assert.Equal(t, shipment.StatusRescheduled, c["status"])

	hist, err := http.Get(srv.URL + "/v1/conversations/c9/messages")
	require.NoError(t, err)
	defer hist.Body.Close()
	var turns []domain.Turn
	require.NoError(t, json.NewDecoder(hist.Body).Decode(&turns))
	require.Len(t, turns, 2)
	assert.Equal(t, domain.TurnFinal, turns[1].Kind)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/conversations/c9", nil)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)

	m, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer m.Body.Close()
	body, err := io.ReadAll(m.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `waybill_tool_calls_total{outcome="ok",tool="confirm_reschedule"} 1`)
}

func TestConfirmation_NotFound(t *testing.T) {
	svc := shipment.NewService(shipment.DefaultSeed())
	srv := newTestServer(t, &fakeAssistant{}, WithShipments(svc))

	resp, err := http.Get(srv.URL + "/v1/shipments/AWB-00000/confirmation")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
