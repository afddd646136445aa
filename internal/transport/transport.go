// Package transport defines the engine's external collaborator contract:
// a factory that yields a transport handle, and the thin call surface the
// core consumes to invoke unary methods on it. The core never assumes how
// the transport serializes messages or validates schemas (spec §4.E).
package transport

import (
	"context"
	"time"

	"github.com/berkeerdo/grpc-resilient/internal/types"
)

// Descriptor carries the transport-factory-facing fields the core passes
// through without interpreting (spec §6 "Transport descriptor fields").
type Descriptor struct {
	URL              string
	Insecure         bool
	CertFile         string
	KeyFile          string
	CAFile           string
	ServerName       string
	KeepaliveTime    time.Duration
	KeepaliveTimeout time.Duration
	MaxSendBytes     int
	MaxRecvBytes     int
}

// InvokeError is the error shape invoke callbacks deliver: a numeric wire
// code plus message/details, mirroring spec §4.E's invoke contract.
type InvokeError struct {
	Code    int
	Message string
	Details string
}

func (e *InvokeError) Error() string {
	if e.Details != "" {
		return e.Details
	}
	return e.Message
}

// Handle is an opaque per-instance object wrapping an underlying network
// channel and its method dispatch, owned exclusively by the Connection
// Manager.
type Handle interface {
	// ChannelState polls current connectivity without blocking.
	ChannelState() types.ChannelState
	// WaitForReady blocks until the channel reaches a ready state or ctx
	// is done, whichever comes first.
	WaitForReady(ctx context.Context) error
	// Invoke calls a unary method. metadata is attached as request headers.
	Invoke(ctx context.Context, method string, request any, response any, metadata map[string]string) error
	// Close releases transport resources; idempotent.
	Close() error
}

// Factory synchronously constructs a Handle from a Descriptor. Failures
// propagate as a returned error.
type Factory func(ctx context.Context, desc Descriptor) (Handle, error)
