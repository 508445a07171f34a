// Package metrics holds the prometheus collectors for the data-access boundary.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Gateway records simulated round trips. A nil *Gateway records nothing.
type Gateway struct {
	calls    *prometheus.CounterVec
	retries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewGateway creates the gateway collectors and registers them on reg.
func NewGateway(reg prometheus.Registerer) *Gateway {
	g := &Gateway{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storyverse",
			Subsystem: "gateway",
			Name:      "calls_total",
			Help:      "Data-access calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storyverse",
			Subsystem: "gateway",
			Name:      "retries_total",
			Help:      "Transient failures that were retried.",
		}, []string{"op"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storyverse",
			Subsystem: "gateway",
			Name:      "call_duration_seconds",
			Help:      "Wall time of data-access calls including retries.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5},
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(g.calls, g.retries, g.duration)
	}
	return g
}

// Observe records a settled call.
func (g *Gateway) Observe(op string, elapsed time.Duration, err error) {
	if g == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	g.calls.WithLabelValues(op, outcome).Inc()
	g.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// Retry records a retried attempt.
func (g *Gateway) Retry(op string) {
	if g == nil {
		return
	}
	g.retries.WithLabelValues(op).Inc()
}
