// Package callerr classifies wire errors into the retryable / connection-
// lost / permanent taxonomy (spec §4.D, §7) and computes the two backoff
// formulas the rest of the engine uses. The two formulas are deliberately
// kept apart rather than unified behind one "Backoff" type: the Call
// Orchestrator's retry delay is uncapped and unjittered by design, while
// the Connection Manager's reconnect delay caps and jitters.
package callerr

import (
	"math/rand"

	"google.golang.org/grpc/codes"
)

// retryable codes per spec §4.D.
var retryableCodes = map[codes.Code]bool{
	codes.Unavailable:       true,
	codes.DeadlineExceeded:  true,
	codes.ResourceExhausted: true,
	codes.Aborted:           true,
}

// IsRetryable reports whether the wire code should trigger a retry attempt.
func IsRetryable(code codes.Code) bool {
	return retryableCodes[code]
}

// IsConnectionLost reports whether the wire code should also trigger the
// Connection Manager's lost-connection path. Only UNAVAILABLE does.
func IsConnectionLost(code codes.Code) bool {
	return code == codes.Unavailable
}

// RetryDelay computes the Call Orchestrator's retry backoff: uncapped,
// unjittered exponential growth. attempt is zero-based. Design Notes
// explicitly forbid adding a cap or jitter here to preserve observable
// timing parity with the original behavior.
func RetryDelay(retryDelayMs int64, attempt int) int64 {
	return retryDelayMs << uint(attempt)
}

// ReconnectDelay computes the Connection Manager's reconnect backoff:
// capped exponential growth plus up to 1000ms of jitter.
func ReconnectDelay(initialMs, maxMs int64, attempts int) int64 {
	delay := initialMs << uint(attempts)
	delay += rand.Int63n(1000)
	if delay > maxMs {
		delay = maxMs
	}
	return delay
}
