package observability

import (
	"context"

	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the loop collectors.
type Metrics struct {
	ToolCalls    *prometheus.CounterVec
	ToolDuration *prometheus.HistogramVec
	Outcomes     *prometheus.CounterVec
	Iterations   prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ToolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waybill_tool_calls_total",
				Help: "Total number of tool invocations",
			},
			[]string{"tool", "outcome"},
		),
		ToolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "waybill_tool_duration_seconds",
				Help:    "Duration of tool executions",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		Outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waybill_loop_outcomes_total",
				Help: "Tool loop invocations by outcome",
			},
			[]string{"outcome"},
		),
		Iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "waybill_loop_iterations",
			Help:    "Rounds used per tool loop invocation",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
	}
	reg.MustRegister(m.ToolCalls, m.ToolDuration, m.Outcomes, m.Iterations)
	return m
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnToolReturn: func(_ context.Context, e *domain.ToolEvent) {
			outcome := "ok"
			if e.IsError {
				outcome = "error"
			}
			m.ToolCalls.WithLabelValues(e.ToolName, outcome).Inc()
			m.ToolDuration.WithLabelValues(e.ToolName).Observe(e.Duration.Seconds())
		},
		OnFinish: func(_ context.Context, e *domain.FinishEvent) {
			m.Outcomes.WithLabelValues(string(e.Outcome)).Inc()
			m.Iterations.Observe(float64(e.Iterations))
		},
	}
}
