package gemini

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK    = "ok"
	outcomeQuota = "quota_exceeded"
	outcomeError = "error"
)

var (
	// callsTotal counts completion calls.
	// Labels: outcome (ok, quota_exceeded, error)
	callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smart_todo",
			Subsystem: "gemini",
			Name:      "calls_total",
			Help:      "Total number of completion calls by outcome",
		},
		[]string{"outcome"},
	)

	callDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "smart_todo",
			Subsystem: "gemini",
			Name:      "call_duration_seconds",
			Help:      "Duration of completion calls in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
)
