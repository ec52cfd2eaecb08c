package courier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics counts published events and the jobs they produced.
// A nil *metrics records nothing.
type metrics struct {
	events *prometheus.CounterVec
	jobs   *prometheus.CounterVec
	errors *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	factory := promauto.With(reg)
	return &metrics{
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courier",
			Subsystem: "dispatch",
			Name:      "events_total",
			Help:      "Events passed to Publish.",
		}, []string{"event"}),
		jobs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courier",
			Subsystem: "dispatch",
			Name:      "jobs_enqueued_total",
			Help:      "Jobs handed to the queue.",
		}, []string{"job_type", "queue"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courier",
			Subsystem: "dispatch",
			Name:      "errors_total",
			Help:      "Handler and enqueue failures.",
		}, []string{"stage"}),
	}
}

func (m *metrics) event(name string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(name).Inc()
}

func (m *metrics) enqueued(jobType, queue string) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(jobType, queue).Inc()
}

func (m *metrics) failed(stage string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(stage).Inc()
}
