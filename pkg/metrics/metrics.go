package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridgeport_http_requests_total",
		Help: "Total number of HTTP requests processed",
	}, []string{"method", "path", "status"})

	// BridgeTransfersTotal counts bridge transfers by terminal outcome.
	// outcome: complete, failed, attestation_timeout, mint_retry
	BridgeTransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridgeport_bridge_transfers_total",
		Help: "Bridge transfer outcomes",
	}, []string{"outcome"})

	// BridgeStepDuration observes how long each bridge step takes.
	BridgeStepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bridgeport_bridge_step_duration_seconds",
		Help:    "Duration of bridge state machine steps",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
	}, []string{"step"})

	// AttestationPolls observes the number of polls needed per attestation.
	AttestationPolls = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bridgeport_attestation_polls",
		Help:    "Number of Iris polls before an attestation completed",
		Buckets: prometheus.LinearBuckets(1, 10, 13),
	})

	// PoolSnapshotCacheHits counts pool browser cache hits and misses.
	PoolSnapshotCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridgeport_pool_snapshot_cache_total",
		Help: "Pool snapshot cache lookups",
	}, []string{"version", "result"})

	// DatabaseConnectionsGauge tracks the connection pool state.
	DatabaseConnectionsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bridgeport_database_connections",
		Help: "Database connection pool state",
	}, []string{"state"})
)
