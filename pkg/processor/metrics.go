package processor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors updated by Process.
type Metrics struct {
	processed *prometheus.CounterVec
	failed    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics registers the processor collectors with reg.
// Pass prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		processed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courier",
			Subsystem: "processor",
			Name:      "emails_sent_total",
			Help:      "Emails rendered and handed to the transport.",
		}, []string{"job_type", "transport"}),
		failed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courier",
			Subsystem: "processor",
			Name:      "emails_failed_total",
			Help:      "Jobs that failed, by stage.",
		}, []string{"job_type", "stage", "permanent"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "courier",
			Subsystem: "processor",
			Name:      "process_duration_seconds",
			Help:      "Time spent processing one job.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job_type"}),
	}
}

func (m *Metrics) observeSent(jobType, transport string, d time.Duration) {
	if m == nil {
		return
	}
	m.processed.WithLabelValues(jobType, transport).Inc()
	m.duration.WithLabelValues(jobType).Observe(d.Seconds())
}

func (m *Metrics) observeFailed(jobType string, stage Stage, permanent bool, d time.Duration) {
	if m == nil {
		return
	}
	p := "false"
	if permanent {
		p = "true"
	}
	m.failed.WithLabelValues(jobType, string(stage), p).Inc()
	m.duration.WithLabelValues(jobType).Observe(d.Seconds())
}
