package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	LeadsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Total number of leads captured",
		},
		[]string{"source"},
	)

	QuizSubmissions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_submissions_total",
			Help: "Total number of affordability quiz submissions",
		},
	)

	MilestonesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "milestones_completed_total",
			Help: "Total number of journey milestones marked completed",
		},
		[]string{"milestone"},
	)

	OffersSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "offers_submitted_total",
			Help: "Total number of offers moved from draft to submitted",
		},
	)

	TasksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasks_processed_total",
			Help: "Total number of background tasks processed",
		},
		[]string{"task_type", "result"},
	)
)
