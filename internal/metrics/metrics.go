package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline metrics
	PipelinesStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crs_pipelines_started_total",
			Help: "Total number of pipeline workflows started",
		},
	)

	PipelinesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crs_pipelines_completed_total",
			Help: "Total number of pipeline workflows completed",
		},
		[]string{"status"},
	)

	QueriesRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crs_queries_routed_total",
			Help: "Total number of queries routed, by classified intent",
		},
		[]string{"intent"},
	)

	// Agent metrics
	AgentInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crs_agent_invocations_total",
			Help: "Total number of agent invocations",
		},
		[]string{"agent", "status"},
	)

	AgentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crs_agent_duration_ms",
			Help:    "Agent invocation duration in milliseconds",
			Buckets: []float64{100, 500, 1000, 2000, 5000, 10000, 30000},
		},
		[]string{"agent"},
	)

	// Search backend metrics
	WebSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crs_web_searches_total",
			Help: "Total number of external web searches issued",
		},
		[]string{"status"},
	)

	// Session metrics
	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crs_sessions_created_total",
			Help: "Total number of conversation sessions created",
		},
	)
)
