package grpcresilient

import (
	"github.com/berkeerdo/grpc-resilient/internal/types"
)

// CallError is the single error carrier Call returns for a wire-level
// failure.
type CallError = types.CallError

var (
	// ErrClosed indicates the client has been closed.
	ErrClosed = types.ErrClosed
	// ErrShuttingDown indicates the client is mid-shutdown.
	ErrShuttingDown = types.ErrShuttingDown
	// ErrInvalidConfig indicates the supplied configuration failed validation.
	ErrInvalidConfig = types.ErrInvalidConfig
	// ErrInvalidKey indicates a cache key failed validation.
	ErrInvalidKey = types.ErrInvalidKey
	// ErrConnectTimeout indicates a connect attempt exceeded its deadline.
	ErrConnectTimeout = types.ErrConnectTimeout
	// ErrCacheMiss indicates a fallback-cache lookup found nothing.
	ErrCacheMiss = types.ErrCacheMiss
	// ErrCircuitOpen indicates the optional circuit breaker is open.
	ErrCircuitOpen = types.ErrCircuitOpen
	// ErrBulkheadFull indicates the optional bulkhead is at capacity.
	ErrBulkheadFull = types.ErrBulkheadFull
	// ErrBulkheadTimeout indicates a bulkhead acquire timed out.
	ErrBulkheadTimeout = types.ErrBulkheadTimeout
)

// IsCacheMiss reports whether err is ErrCacheMiss.
func IsCacheMiss(err error) bool { return types.IsCacheMiss(err) }

// IsCircuitOpen reports whether err is ErrCircuitOpen.
func IsCircuitOpen(err error) bool { return types.IsCircuitOpen(err) }

// IsClosed reports whether err is ErrClosed or ErrShuttingDown.
func IsClosed(err error) bool { return types.IsClosed(err) }
