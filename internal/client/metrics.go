package client

import "github.com/prometheus/client_golang/prometheus"

const (
	refreshSuccess = "success"
	refreshFailure = "failure"
	refreshMissing = "missing"

	outcomePassed    = "passed"
	outcomeRetried   = "retried"
	outcomeExpired   = "expired"
	outcomeTransport = "transport_error"
)

type Metrics struct {
	requests *prometheus.CounterVec
	refresh  *prometheus.CounterVec
}

// NewMetrics registers the pipeline collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fitness_session",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Executed authenticated requests by outcome.",
		}, []string{"outcome"}),
		refresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fitness_session",
			Subsystem: "client",
			Name:      "refresh_total",
			Help:      "Access token refresh attempts by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.requests, m.refresh)
	return m
}

func (m *Metrics) request(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) refreshed(result string) {
	if m == nil {
		return
	}
	m.refresh.WithLabelValues(result).Inc()
}
