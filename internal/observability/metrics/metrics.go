package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LeadMetrics exposes counters/histograms for the intake endpoints.
type LeadMetrics struct {
	intakeTotal   *prometheus.CounterVec
	sinkTotal     *prometheus.CounterVec
	sinkLatency   *prometheus.HistogramVec
	notifyFailure *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		intakeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nomad",
			Subsystem: "intake",
			Name:      "requests_total",
			Help:      "Intake submissions by kind and outcome",
		}, []string{"kind", "outcome"}),
		sinkTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nomad",
			Subsystem: "sink",
			Name:      "writes_total",
			Help:      "Sink writes by sink and status",
		}, []string{"sink", "status"}),
		sinkLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nomad",
			Subsystem: "sink",
			Name:      "write_latency_seconds",
			Help:      "Latency of sink writes",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sink"}),
		notifyFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nomad",
			Subsystem: "notify",
			Name:      "failures_total",
			Help:      "Lead notifications that could not be delivered",
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.intakeTotal, m.sinkTotal, m.sinkLatency, m.notifyFailure)
	return m
}

// ObserveIntake counts one submission; outcome is ok, invalid, sink_error or panic.
func (m *LeadMetrics) ObserveIntake(kind, outcome string) {
	if m == nil {
		return
	}
	m.intakeTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *LeadMetrics) ObserveSink(sink string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.sinkTotal.WithLabelValues(sink, status).Inc()
	m.sinkLatency.WithLabelValues(sink).Observe(elapsed.Seconds())
}

func (m *LeadMetrics) ObserveNotifyFailure(kind string) {
	if m == nil {
		return
	}
	m.notifyFailure.WithLabelValues(kind).Inc()
}
