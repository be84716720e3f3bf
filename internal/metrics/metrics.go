package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Probe metrics
var (
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vconv_probes_total",
			Help: "Total number of media probes by how many fields were detected",
		},
		[]string{"result"}, // "full", "partial", "none"
	)
)

// Conversion job metrics
var (
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vconv_jobs_total",
			Help: "Total number of finished conversion jobs",
		},
		[]string{"status"}, // "success", "failure"
	)

	JobFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vconv_job_failures_total",
			Help: "Total number of failed conversion jobs by failure kind",
		},
		[]string{"kind"},
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vconv_job_duration_seconds",
			Help:    "Conversion job duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600},
		},
	)

	JobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vconv_jobs_in_progress",
			Help: "Number of conversion jobs currently running",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vconv_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
