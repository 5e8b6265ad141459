// Package telemetry exposes propagation counters to Prometheus.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/astroprop/internal/integrators"
)

// Metrics groups the propagation collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	windows     prometheus.Counter
	steps       prometheus.Counter
	rejected    prometheus.Counter
	evaluations prometheus.Counter
	events      *prometheus.CounterVec
	bisections  prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		windows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "astroprop_windows_total",
			Help: "Integration windows completed.",
		}),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "astroprop_integrator_steps_total",
			Help: "Accepted integrator steps.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "astroprop_integrator_rejected_total",
			Help: "Rejected integrator steps.",
		}),
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "astroprop_derivative_evaluations_total",
			Help: "Derivative function evaluations.",
		}),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astroprop_events_total",
				Help: "Handled events by spacecraft and detector.",
			},
			[]string{"spacecraft", "detector"},
		),
		bisections: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "astroprop_bisection_iterations",
			Help:    "Bisection iterations per located event.",
			Buckets: prometheus.LinearBuckets(10, 5, 8),
		}),
	}
	reg.MustRegister(m.windows, m.steps, m.rejected, m.evaluations, m.events, m.bisections)
	return m
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveWindow() {
	if m == nil {
		return
	}
	m.windows.Inc()
}

func (m *Metrics) ObserveIntegration(s integrators.Stats) {
	if m == nil {
		return
	}
	m.steps.Add(float64(s.Steps))
	m.rejected.Add(float64(s.Rejected))
	m.evaluations.Add(float64(s.Evaluations))
}

func (m *Metrics) ObserveBisection(s integrators.Stats) {
	if m == nil {
		return
	}
	m.ObserveIntegration(s)
	m.bisections.Observe(float64(s.Bisections))
}

func (m *Metrics) ObserveEvent(spacecraft, detector string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(spacecraft, detector).Inc()
}
