// Package connmgr implements the Connection Manager: the state machine,
// monitor loop, and reconnect scheduler that own the transport handle's
// lifecycle (spec §4.F).
package connmgr

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/berkeerdo/grpc-resilient/internal/callerr"
	"github.com/berkeerdo/grpc-resilient/internal/transport"
	"github.com/berkeerdo/grpc-resilient/internal/types"
)

const (
	monitorFirstProbeDelay = 5 * time.Second
	monitorReadyInterval   = 5 * time.Second
	monitorOtherInterval   = 1 * time.Second
	connectFutureKey       = "connect"
)

// EventSink receives lifecycle events. Its methods must not block; the
// facade is expected to fan these out to subscribers asynchronously.
type EventSink interface {
	OnConnecting()
	OnConnected()
	OnDisconnected()
	OnError(err error)
}

// Manager owns the transport handle's lifecycle per spec §4.F. It is the
// sole writer of connection state; all reads are safe for concurrent use.
type Manager struct {
	serviceName string
	factory     transport.Factory
	descriptor  transport.Descriptor
	timeout     time.Duration

	initialReconnectDelayMs int64
	maxReconnectDelayMs     int64
	maxReconnectAttempts    int

	logger types.Logger
	events EventSink

	mu                sync.Mutex
	state             types.ConnState
	handle            transport.Handle
	reconnectAttempts int
	lastConnectedAt   time.Time
	lastErrorAt       time.Time
	lastError         string
	isShuttingDown    bool
	reconnectTimer    *time.Timer
	monitorCancel     context.CancelFunc

	connectGroup singleflight.Group
}

// Config bundles the constructor arguments grouped by concern.
type Config struct {
	ServiceName             string
	Factory                 transport.Factory
	Descriptor              transport.Descriptor
	Timeout                 time.Duration
	InitialReconnectDelayMs int64
	MaxReconnectDelayMs     int64
	MaxReconnectAttempts    int
	Logger                  types.Logger
	Events                  EventSink
}

// New constructs a Manager in the initial DISCONNECTED state. No connection
// attempt is made until EnsureConnected is called.
func New(cfg Config) *Manager {
	events := cfg.Events
	if events == nil {
		events = noopEvents{}
	}
	return &Manager{
		serviceName:             cfg.ServiceName,
		factory:                 cfg.Factory,
		descriptor:              cfg.Descriptor,
		timeout:                 cfg.Timeout,
		initialReconnectDelayMs: cfg.InitialReconnectDelayMs,
		maxReconnectDelayMs:     cfg.MaxReconnectDelayMs,
		maxReconnectAttempts:    cfg.MaxReconnectAttempts,
		logger:                  cfg.Logger,
		events:                  events,
		state:                   types.StateDisconnected,
	}
}

type noopEvents struct{}

func (noopEvents) OnConnecting()     {}
func (noopEvents) OnConnected()      {}
func (noopEvents) OnDisconnected()   {}
func (noopEvents) OnError(err error) {}

// State returns the current connection state.
func (m *Manager) State() types.ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsConnected reports state == CONNECTED.
func (m *Manager) IsConnected() bool {
	return m.State() == types.StateConnected
}

// ReconnectAttempts returns the number of reconnect attempts since the last
// successful connection.
func (m *Manager) ReconnectAttempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reconnectAttempts
}

// LastConnectedAt returns the timestamp of the most recent successful connect.
func (m *Manager) LastConnectedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastConnectedAt
}

// LastError returns the most recent connection error's timestamp and message.
func (m *Manager) LastError() (time.Time, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErrorAt, m.lastError
}

// Handle returns the current transport handle, or nil if not connected.
// Callers must treat a nil handle as "not connected" and call
// EnsureConnected first.
func (m *Manager) Handle() transport.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != types.StateConnected {
		return nil
	}
	return m.handle
}

// EnsureConnected implements spec §4.F's idempotent, concurrent-safe
// connection establishment: concurrent callers against an uninitialized
// client are deduplicated onto a single connect() attempt (Invariant I2).
func (m *Manager) EnsureConnected(ctx context.Context) bool {
	m.mu.Lock()
	if m.state == types.StateConnected && m.handle != nil {
		m.mu.Unlock()
		return true
	}
	m.mu.Unlock()

	_, _, _ = m.connectGroup.Do(connectFutureKey, func() (any, error) {
		return nil, m.connect(ctx)
	})

	return m.State() == types.StateConnected
}

// connect performs one connection attempt, transitioning state and
// scheduling a reconnect on failure.
func (m *Manager) connect(ctx context.Context) error {
	m.mu.Lock()
	if m.isShuttingDown {
		m.mu.Unlock()
		return types.ErrShuttingDown
	}
	if m.reconnectAttempts > 0 {
		m.state = types.StateReconnecting
	} else {
		m.state = types.StateConnecting
	}
	m.mu.Unlock()
	m.events.OnConnecting()

	connectCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	handle, err := m.factory(connectCtx, m.descriptor)
	if err == nil {
		err = handle.WaitForReady(connectCtx)
	}

	if err != nil {
		m.mu.Lock()
		m.lastErrorAt = time.Now()
		m.lastError = err.Error()
		m.state = types.StateDisconnected
		m.mu.Unlock()

		m.events.OnError(err)
		m.scheduleReconnect()
		return err
	}

	m.mu.Lock()
	m.handle = handle
	m.state = types.StateConnected
	m.lastConnectedAt = time.Now()
	m.reconnectAttempts = 0
	m.lastError = ""
	m.mu.Unlock()

	m.events.OnConnected()
	m.startMonitor()
	return nil
}

// startMonitor launches the cooperative monitor loop described in §4.F.
func (m *Manager) startMonitor() {
	ctx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	if m.monitorCancel != nil {
		m.monitorCancel()
	}
	m.monitorCancel = cancel
	handle := m.handle
	m.mu.Unlock()

	go m.monitorLoop(ctx, handle)
}

func (m *Manager) monitorLoop(ctx context.Context, handle transport.Handle) {
	timer := time.NewTimer(monitorFirstProbeDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		m.mu.Lock()
		shuttingDown := m.isShuttingDown
		currentHandle := m.handle
		m.mu.Unlock()

		if shuttingDown || currentHandle != handle || currentHandle == nil {
			return
		}

		switch handle.ChannelState() {
		case types.ChannelReady:
			timer.Reset(monitorReadyInterval)
		case types.ChannelTransientFailure, types.ChannelShutdown:
			m.HandleConnectionLost()
			return
		default:
			timer.Reset(monitorOtherInterval)
		}
	}
}

// HandleConnectionLost is a no-op unless currently CONNECTED. Otherwise it
// tears down the handle, emits disconnected, and schedules a reconnect.
func (m *Manager) HandleConnectionLost() {
	m.mu.Lock()
	if m.state != types.StateConnected {
		m.mu.Unlock()
		return
	}
	handle := m.handle
	m.state = types.StateDisconnected
	m.handle = nil
	m.mu.Unlock()

	m.events.OnDisconnected()

	if handle != nil {
		_ = handle.Close()
	}

	m.scheduleReconnect()
}

// scheduleReconnect arms a single-slot reconnect timer (Invariant I3).
func (m *Manager) scheduleReconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isShuttingDown || m.reconnectTimer != nil {
		return
	}
	if m.maxReconnectAttempts > 0 && m.reconnectAttempts >= m.maxReconnectAttempts {
		m.logger.Warn("connmgr: max reconnect attempts reached, giving up until explicit ensureConnected",
			"service", m.serviceName, "attempts", m.reconnectAttempts)
		return
	}

	delayMs := callerr.ReconnectDelay(m.initialReconnectDelayMs, m.maxReconnectDelayMs, m.reconnectAttempts)
	m.reconnectAttempts++

	m.reconnectTimer = time.AfterFunc(time.Duration(delayMs)*time.Millisecond, func() {
		m.mu.Lock()
		m.reconnectTimer = nil
		shuttingDown := m.isShuttingDown
		m.mu.Unlock()

		if shuttingDown {
			return
		}
		_ = m.connect(context.Background())
	})
}

// Close shuts the manager down: cancels timers, closes the handle, and
// rejects all further reconnection (Invariant I6).
func (m *Manager) Close() error {
	m.mu.Lock()
	m.isShuttingDown = true
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
	if m.monitorCancel != nil {
		m.monitorCancel()
		m.monitorCancel = nil
	}
	handle := m.handle
	m.handle = nil
	m.state = types.StateDisconnected
	m.mu.Unlock()

	m.events.OnDisconnected()

	if handle != nil {
		return handle.Close()
	}
	return nil
}
