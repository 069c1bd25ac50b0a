package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_http_requests_total",
		Help: "Total HTTP requests, labelled by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "events_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	ImageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_image_uploads_total",
		Help: "Total event image uploads, labelled by status.",
	}, []string{"status"})

	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_moderation_actions_total",
		Help: "Total moderation actions, labelled by action (approve, delete).",
	}, []string{"action"})

	EmailJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_email_jobs_total",
		Help: "Total email jobs processed by the worker, labelled by status.",
	}, []string{"status"})
)
