package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "r69_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "r69_http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	ChatLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "r69_chat_latency_seconds",
			Help:    "Upstream chat latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"provider", "result"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "r69_active_sessions",
			Help: "Number of connected browser sessions",
		},
	)

	ClipSwitches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "r69_clip_switches_total",
			Help: "Clip switches by outcome",
		},
		[]string{"outcome"},
	)

	Transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "r69_mode_transitions_total",
			Help: "Committed mode transitions by target mode and trigger",
		},
		[]string{"mode", "reason"},
	)
)
