package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssistantRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_requests_total",
			Help: "Total number of answered questions by request type",
		},
		[]string{"request_type"},
	)

	AssistantRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_request_duration_seconds",
			Help:    "End-to-end duration of the ask pipeline",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"request_type"},
	)

	RefinementsRequested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_refinements_total",
			Help: "Number of answers replaced by a refinement request",
		},
		[]string{"system_name"},
	)

	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatcher_tool_calls_total",
			Help: "Tool calls executed by the dispatcher",
		},
		[]string{"function_name", "outcome"},
	)

	ToolCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dispatcher_tool_call_duration_seconds",
			Help: "Duration of a single query operation",
		},
		[]string{"function_name"},
	)

	LLMCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_calls_total",
			Help: "Language model calls by stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatcher_cache_lookups_total",
			Help: "Dispatch result cache hits and misses",
		},
		[]string{"result"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)
