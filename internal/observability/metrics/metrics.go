package metrics

import "github.com/prometheus/client_golang/prometheus"

// VitalsMetrics exposes counters/histograms for vitals analysis and storage.
type VitalsMetrics struct {
	assessmentsTotal *prometheus.CounterVec
	rejectedTotal    *prometheus.CounterVec
	storeLatency     *prometheus.HistogramVec
	alertsTotal      *prometheus.CounterVec
}

func NewVitalsMetrics(reg prometheus.Registerer) *VitalsMetrics {
	m := &VitalsMetrics{
		assessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ems",
			Subsystem: "vitals",
			Name:      "assessments_total",
			Help:      "Total vitals assessments by blood pressure category and severity",
		}, []string{"category", "severity", "source"}),
		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ems",
			Subsystem: "vitals",
			Name:      "rejected_total",
			Help:      "Total readings rejected by validation",
		}, []string{"source"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ems",
			Subsystem: "vitals",
			Name:      "store_latency_seconds",
			Help:      "Latency of vitals store operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		alertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ems",
			Subsystem: "alerts",
			Name:      "crisis_total",
			Help:      "Total crisis alerts published or dispatched",
		}, []string{"stage", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.assessmentsTotal, m.rejectedTotal, m.storeLatency, m.alertsTotal)
	return m
}

func (m *VitalsMetrics) ObserveAssessment(category, severity, source string) {
	if m == nil {
		return
	}
	m.assessmentsTotal.WithLabelValues(category, severity, source).Inc()
}

func (m *VitalsMetrics) ObserveRejected(source string) {
	if m == nil {
		return
	}
	m.rejectedTotal.WithLabelValues(source).Inc()
}

func (m *VitalsMetrics) ObserveStore(op string, err error, seconds float64) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.storeLatency.WithLabelValues(op, status).Observe(seconds)
}

// ObserveAlert counts alerts at a stage ("published", "dispatched").
func (m *VitalsMetrics) ObserveAlert(stage string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.alertsTotal.WithLabelValues(stage, status).Inc()
}
