package types

import (
	"testing"
	"time"
)

func TestConnStateString(t *testing.T) {
	tests := []struct {
		state    ConnState
		expected string
	}{
		{StateDisconnected, "DISCONNECTED"},
		{StateConnecting, "CONNECTING"},
		{StateConnected, "CONNECTED"},
		{StateReconnecting, "RECONNECTING"},
		{ConnState(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("ConnState.String() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestChannelStateString(t *testing.T) {
	tests := []struct {
		state    ChannelState
		expected string
	}{
		{ChannelReady, "READY"},
		{ChannelConnecting, "CONNECTING"},
		{ChannelIdle, "IDLE"},
		{ChannelTransientFailure, "TRANSIENT_FAILURE"},
		{ChannelShutdown, "SHUTDOWN"},
		{ChannelState(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("ChannelState.String() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestHealthReportFields(t *testing.T) {
	now := time.Now()
	h := HealthReport{
		State:             StateConnected,
		Healthy:           true,
		LatencyMs:         12.5,
		LastConnectedAt:   now,
		ReconnectAttempts: 0,
	}

	if !h.Healthy {
		t.Error("Healthy = false, want true")
	}
	if h.State != StateConnected {
		t.Errorf("State = %v, want CONNECTED", h.State)
	}
}

func TestCallErrorError(t *testing.T) {
	err := NewCallError(3, "", "bad id")
	if err.Error() != "bad id" {
		t.Errorf("Error() = %s, want %q", err.Error(), "bad id")
	}
	if err.Code != 3 || err.GRPCCode != 3 {
		t.Errorf("Code/GRPCCode = %d/%d, want 3/3", err.Code, err.GRPCCode)
	}

	// message used when details is empty
	err2 := NewCallError(5, "not found", "")
	if err2.Error() != "not found" {
		t.Errorf("Error() = %s, want %q", err2.Error(), "not found")
	}
}

func TestNewUnavailableError(t *testing.T) {
	err := NewUnavailableError("billing")
	want := "billing is not available"
	if err.Error() != want {
		t.Errorf("Error() = %s, want %q", err.Error(), want)
	}
}
