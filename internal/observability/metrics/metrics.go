package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for the lead capture flow.
type LeadMetrics struct {
	leadsCreated    *prometheus.CounterVec
	leadsRejected   *prometheus.CounterVec
	createLatency   *prometheus.HistogramVec
	formSubmissions *prometheus.CounterVec
	analyticsEvents *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		leadsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadcapture",
			Subsystem: "leads",
			Name:      "created_total",
			Help:      "Leads accepted by the lead endpoint",
		}, []string{"store"}),
		leadsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadcapture",
			Subsystem: "leads",
			Name:      "rejected_total",
			Help:      "Lead requests rejected before storage",
		}, []string{"reason"}),
		createLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadcapture",
			Subsystem: "leads",
			Name:      "create_duration_seconds",
			Help:      "Latency of lead creation including storage",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store"}),
		formSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadcapture",
			Subsystem: "form",
			Name:      "submissions_total",
			Help:      "Contact form submissions by outcome",
		}, []string{"outcome"}),
		analyticsEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadcapture",
			Subsystem: "analytics",
			Name:      "events_total",
			Help:      "Analytics events handed to the sink",
		}, []string{"event", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.leadsCreated, m.leadsRejected, m.createLatency, m.formSubmissions, m.analyticsEvents)
	return m
}

func (m *LeadMetrics) ObserveCreated(store string, seconds float64) {
	if m == nil {
		return
	}
	m.leadsCreated.WithLabelValues(store).Inc()
	m.createLatency.WithLabelValues(store).Observe(seconds)
}

func (m *LeadMetrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.leadsRejected.WithLabelValues(reason).Inc()
}

// ObserveSubmission records a form outcome: success, invalid, pending or error.
func (m *LeadMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.formSubmissions.WithLabelValues(outcome).Inc()
}

func (m *LeadMetrics) ObserveEvent(event, status string) {
	if m == nil {
		return
	}
	m.analyticsEvents.WithLabelValues(event, status).Inc()
}
