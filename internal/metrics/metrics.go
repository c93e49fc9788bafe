// Package metrics defines the Prometheus metrics exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine metrics
var (
	// ClaimsTotal counts claim attempts by platform and outcome (success/failure).
	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "golike_claims_total",
			Help: "Claim attempts by platform and outcome",
		},
		[]string{"platform", "outcome"},
	)

	// RewardTotal accumulates earned reward units ("xu") by platform.
	RewardTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "golike_reward_units_total",
			Help: "Total reward units earned by platform",
		},
		[]string{"platform"},
	)

	// ActiveSessions tracks live user sessions in the registry.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_active_sessions",
			Help: "Number of live user sessions",
		},
	)

	// RunningWorkers tracks spawned job workers by platform.
	RunningWorkers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engine_running_workers",
			Help: "Number of running job workers by platform",
		},
		[]string{"platform"},
	)

	// BroadcasterRespawnsTotal counts status broadcasters revived by a worker
	// after being found dead.
	BroadcasterRespawnsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_broadcaster_respawns_total",
			Help: "Status broadcasters respawned after dying mid-session",
		},
	)

	// StatusPushesTotal counts status renders pushed to the control channel.
	StatusPushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_status_pushes_total",
			Help: "Status pushes to the control channel by result",
		},
		[]string{"result"},
	)
)

// Provider metrics
var (
	// ProviderRequestDuration tracks Golike API latency per endpoint.
	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "golike_request_duration_seconds",
			Help:    "Golike API request duration by endpoint",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	// ProviderErrorsTotal counts failed Golike API requests per endpoint.
	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "golike_request_errors_total",
			Help: "Failed Golike API requests by endpoint",
		},
		[]string{"endpoint"},
	)
)

// Store metrics
var (
	// RedisOpsTotal counts Redis commands by operation and status.
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Redis operations by command and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis command latency.
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration by command",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// RedisConnectionErrors counts failed Redis connection attempts.
	RedisConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_connection_errors_total",
			Help: "Failed Redis connection attempts",
		},
	)

	// CircuitBreakerStateChanges tracks credential store breaker transitions.
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks the current breaker state (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)
