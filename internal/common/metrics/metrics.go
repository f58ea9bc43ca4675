// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	GenerationCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genai_calls_total",
			Help: "Total number of LLM generation calls by kind and outcome",
		},
		[]string{"kind", "status"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "genai_call_duration_seconds",
			Help:    "LLM generation latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"kind"},
	)

	DocumentUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_uploads_total",
			Help: "Total number of document uploads by category and outcome",
		},
		[]string{"category", "status"},
	)

	DocumentUploadBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_upload_bytes_total",
			Help: "Total bytes written to object storage by category",
		},
		[]string{"category"},
	)

	ReconciledUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_reconciled_total",
			Help: "Stale document rows cleaned up by reconciliation, by state",
		},
		[]string{"state"},
	)

	ScholarshipConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scholarships_version_conflicts_total",
			Help: "Optimistic concurrency conflicts on scholarship writes",
		},
	)

	RemindersSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_sent_total",
			Help: "Deadline reminders by channel and outcome",
		},
		[]string{"channel", "status"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)
)
