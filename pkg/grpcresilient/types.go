package grpcresilient

import (
	"github.com/berkeerdo/grpc-resilient/internal/transport"
	"github.com/berkeerdo/grpc-resilient/internal/types"
)

type (
	// TransportFactory dials a new connection handle for a Descriptor. Tests
	// and callers with a custom dialer can override the gRPC default via
	// WithTransportFactory.
	TransportFactory = transport.Factory
	// ConnState is the connection lifecycle state of a Client.
	ConnState = types.ConnState
	// ChannelState mirrors the transport's low-level connectivity status.
	ChannelState = types.ChannelState
	// MetricsSnapshot is an immutable point-in-time view of accumulated metrics.
	MetricsSnapshot = types.MetricsSnapshot
	// HealthReport describes the current health of a Client.
	HealthReport = types.HealthReport
	// Logger is the structured logging capability consumed by the engine.
	Logger = types.Logger
	// MetricsRecorder is the write surface of the metrics accumulator.
	MetricsRecorder = types.MetricsRecorder
	// Serializer converts between a caller's response value and cache bytes.
	Serializer = types.Serializer
	// CallOption configures a single Call invocation.
	CallOption = types.CallOption
)

const (
	// StateDisconnected is the initial state and the state after Close.
	StateDisconnected = types.StateDisconnected
	// StateConnecting is entered on the first connect attempt.
	StateConnecting = types.StateConnecting
	// StateConnected means a transport handle is present and ready.
	StateConnected = types.StateConnected
	// StateReconnecting is entered on connect attempts after the first.
	StateReconnecting = types.StateReconnecting
)

const (
	// EventConnecting fires when a connect attempt starts.
	EventConnecting = types.EventConnecting
	// EventConnected fires when a connect attempt succeeds.
	EventConnected = types.EventConnected
	// EventDisconnected fires when the connection is lost.
	EventDisconnected = types.EventDisconnected
	// EventError fires on a connect failure.
	EventError = types.EventError
	// EventCircuitBreakerTrip fires when the optional circuit breaker trips.
	EventCircuitBreakerTrip = types.EventCircuitBreakerTrip
)
