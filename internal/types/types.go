// Package types provides shared types for the grpc-resilient engine.
// This package breaks import cycles between pkg/grpcresilient and the
// internal connection/orchestrator/cache packages.
package types

import "time"

// ConnState is the connection lifecycle state of a client instance.
type ConnState int

const (
	// StateDisconnected is the initial state and the state after close().
	StateDisconnected ConnState = iota + 1
	// StateConnecting is entered on the first connect attempt.
	StateConnecting
	// StateConnected means a transport handle is present and ready.
	StateConnected
	// StateReconnecting is entered on connect attempts after the first.
	StateReconnecting
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	default:
		return "UNKNOWN"
	}
}

// ChannelState mirrors the transport's low-level connectivity status.
type ChannelState int

const (
	ChannelReady ChannelState = iota + 1
	ChannelConnecting
	ChannelIdle
	ChannelTransientFailure
	ChannelShutdown
)

func (s ChannelState) String() string {
	switch s {
	case ChannelReady:
		return "READY"
	case ChannelConnecting:
		return "CONNECTING"
	case ChannelIdle:
		return "IDLE"
	case ChannelTransientFailure:
		return "TRANSIENT_FAILURE"
	case ChannelShutdown:
		return "SHUTDOWN"
	default:
		return "UNKNOWN"
	}
}

// Event names emitted by the Connection Manager / Facade event bus.
const (
	EventConnecting         = "connecting"
	EventConnected          = "connected"
	EventDisconnected       = "disconnected"
	EventError              = "error"
	EventCircuitBreakerTrip = "circuitBreakerTrip"
)

// MetricsSnapshot is an immutable point-in-time view of accumulated metrics.
type MetricsSnapshot struct {
	TotalCalls          int64
	SuccessfulCalls     int64
	FailedCalls         int64
	TotalRetries        int64
	CircuitBreakerTrips int64
	CacheHits           int64
	CacheMisses         int64
	AvgLatencyMs        float64
	MaxLatencyMs        float64
	MinLatencyMs        float64
	LastResetAt         time.Time
}

// HealthReport describes the current health of a client instance.
type HealthReport struct {
	State             ConnState
	Healthy           bool
	LatencyMs         float64
	LastConnectedAt   time.Time
	LastErrorAt       time.Time
	LastError         string
	ReconnectAttempts int
	Metrics           MetricsSnapshot
}

// CacheEntry is a single Fallback Cache entry.
type CacheEntry struct {
	Key             string
	Value           []byte
	InsertTimestamp time.Time
	TTL             time.Duration
}
