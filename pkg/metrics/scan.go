package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ScanMetrics records metadata for vision-analysis calls.
type ScanMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewScanMetrics registers the scan metrics on the provided registerer.
func NewScanMetrics(reg prometheus.Registerer) *ScanMetrics {
	if reg == nil {
		return &ScanMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scan_analysis_duration_seconds",
		Help:    "Duration of vision-analysis calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_analysis_success",
		Help: "Successful vision-analysis calls.",
	}, []string{"model"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_analysis_failure",
		Help: "Failed vision-analysis calls.",
	}, []string{"model"})
	reg.MustRegister(duration, success, failure)
	return &ScanMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration of one analysis against the model.
func (s *ScanMetrics) ObserveDuration(model string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(model)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the model.
func (s *ScanMetrics) IncSuccess(model string) {
	if s == nil || s.success == nil {
		return
	}
	s.success.WithLabelValues(normalizeLabel(model)).Inc()
}

// IncFailure increments the failure counter for the model.
func (s *ScanMetrics) IncFailure(model string) {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.WithLabelValues(normalizeLabel(model)).Inc()
}

func normalizeLabel(model string) string {
	if model == "" {
		return "unknown"
	}
	return model
}
