package types

import (
	"errors"
	"fmt"
)

var (
	ErrClosed           = errors.New("grpcresilient: client closed")
	ErrShuttingDown     = errors.New("grpcresilient: client shutting down")
	ErrInvalidConfig    = errors.New("grpcresilient: invalid configuration")
	ErrInvalidKey       = errors.New("grpcresilient: invalid cache key")
	ErrConnectTimeout   = errors.New("grpcresilient: connect deadline exceeded")
	ErrCacheMiss        = errors.New("grpcresilient: cache key not found")
	ErrCircuitOpen      = errors.New("grpcresilient: circuit breaker open")
	ErrBulkheadFull     = errors.New("grpcresilient: bulkhead at capacity")
	ErrBulkheadTimeout  = errors.New("grpcresilient: bulkhead acquire timeout")
)

// CallError is the single error carrier surfaced to callers of Call, per the
// spec's error-mapping rule: message = details||message, code = wire code,
// grpcCode is an alias kept for caller compatibility with status-code-aware
// error handling.
type CallError struct {
	Message  string
	Code     int
	GRPCCode int
}

func (e *CallError) Error() string {
	return e.Message
}

// NewCallError builds a CallError from a wire code and message/details pair,
// preferring details when present.
func NewCallError(code int, message, details string) *CallError {
	msg := message
	if details != "" {
		msg = details
	}
	return &CallError{Message: msg, Code: code, GRPCCode: code}
}

// NewUnavailableError builds the unavailable-sentinel error the orchestrator
// raises when ensureConnected() fails and no cached value exists.
func NewUnavailableError(serviceName string) error {
	return fmt.Errorf("%s is not available", serviceName)
}

func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}

func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed) || errors.Is(err, ErrShuttingDown)
}
