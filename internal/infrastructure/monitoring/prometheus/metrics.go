// Package prometheus defines the service metrics and their registration.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every metric the service exposes.  Constructed once at
// startup and injected where needed.
type Metrics struct {
	// HTTP layer.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Chat engine.
	ChatTurnsTotal      *prometheus.CounterVec
	ChatTurnDuration    prometheus.Histogram
	ChatFailedTurns     prometheus.Counter
	RetrievedCandidates prometheus.Histogram

	// Ingestion.
	IngestDocumentsTotal *prometheus.CounterVec
	IngestUnitsTotal     prometheus.Counter

	// Sessions.
	ActiveSessions prometheus.Gauge
}

// NewMetrics builds and registers all metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keyipchat",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "keyipchat",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		ChatTurnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keyipchat",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Chat turns by outcome.",
		}, []string{"outcome"}),
		ChatTurnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "keyipchat",
			Subsystem: "chat",
			Name:      "turn_duration_seconds",
			Help:      "End-to-end chat turn latency including synthesis.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),
		ChatFailedTurns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "keyipchat",
			Subsystem: "chat",
			Name:      "failed_turns_total",
			Help:      "Turns answered with the generic failure message.",
		}),
		RetrievedCandidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "keyipchat",
			Subsystem: "chat",
			Name:      "retrieved_candidates",
			Help:      "Merged candidate count per turn.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 40},
		}),
		IngestDocumentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keyipchat",
			Subsystem: "ingest",
			Name:      "documents_total",
			Help:      "Ingested documents by outcome.",
		}, []string{"outcome"}),
		IngestUnitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "keyipchat",
			Subsystem: "ingest",
			Name:      "units_total",
			Help:      "Indexable units written to the vector store.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "keyipchat",
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Live chat sessions in the store.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ChatTurnsTotal,
		m.ChatTurnDuration,
		m.ChatFailedTurns,
		m.RetrievedCandidates,
		m.IngestDocumentsTotal,
		m.IngestUnitsTotal,
		m.ActiveSessions,
	)
	return m
}
