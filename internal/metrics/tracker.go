// Package metrics implements the resilience engine's metrics accumulator and
// optional publishing layer.
package metrics

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/berkeerdo/grpc-resilient/internal/types"
)

// Tracker is the Metrics Accumulator: plain integer counters plus a running
// latency sum, with a dirty-flag snapshot cache so repeated reads with no
// intervening mutation return the same snapshot by reference.
type Tracker struct {
	totalCalls          atomic.Int64
	successfulCalls     atomic.Int64
	failedCalls         atomic.Int64
	totalRetries        atomic.Int64
	circuitBreakerTrips atomic.Int64
	cacheHits           atomic.Int64
	cacheMisses         atomic.Int64

	// latencyMu guards the four fields below, which require read-modify-write
	// comparisons that plain atomics can't express cleanly.
	latencyMu     sync.Mutex
	latencySum    float64
	minLatencyMs  float64
	maxLatencyMs  float64
	lastLatencyMs float64

	resetMu     sync.Mutex
	lastResetAt time.Time

	dirty    atomic.Bool
	snapshot atomic.Pointer[types.MetricsSnapshot]
}

// NewTracker creates a Tracker with all counters at zero.
func NewTracker() *Tracker {
	t := &Tracker{
		minLatencyMs: math.Inf(1),
	}
	t.resetMu.Lock()
	t.lastResetAt = time.Now()
	t.resetMu.Unlock()
	t.dirty.Store(true)
	return t
}

// RecordCallStart increments totalCalls. Called once per Call invocation,
// before the retry loop begins.
func (t *Tracker) RecordCallStart() {
	t.totalCalls.Add(1)
	t.dirty.Store(true)
}

// RecordSuccess increments successfulCalls and folds latencyMs into the
// running sum/min/max.
func (t *Tracker) RecordSuccess(latencyMs float64) {
	t.successfulCalls.Add(1)

	t.latencyMu.Lock()
	t.latencySum += latencyMs
	if latencyMs < t.minLatencyMs {
		t.minLatencyMs = latencyMs
	}
	if latencyMs > t.maxLatencyMs {
		t.maxLatencyMs = latencyMs
	}
	t.lastLatencyMs = latencyMs
	t.latencyMu.Unlock()

	t.dirty.Store(true)
}

// RecordFailure increments failedCalls.
func (t *Tracker) RecordFailure() {
	t.failedCalls.Add(1)
	t.dirty.Store(true)
}

// RecordRetry increments totalRetries.
func (t *Tracker) RecordRetry() {
	t.totalRetries.Add(1)
	t.dirty.Store(true)
}

// RecordCircuitBreakerTrip increments circuitBreakerTrips.
func (t *Tracker) RecordCircuitBreakerTrip() {
	t.circuitBreakerTrips.Add(1)
	t.dirty.Store(true)
}

// RecordCacheHit increments cacheHits.
func (t *Tracker) RecordCacheHit() {
	t.cacheHits.Add(1)
	t.dirty.Store(true)
}

// RecordCacheMiss increments cacheMisses.
func (t *Tracker) RecordCacheMiss() {
	t.cacheMisses.Add(1)
	t.dirty.Store(true)
}

// Reset zeroes every counter and starts a fresh latency window.
func (t *Tracker) Reset() {
	t.totalCalls.Store(0)
	t.successfulCalls.Store(0)
	t.failedCalls.Store(0)
	t.totalRetries.Store(0)
	t.circuitBreakerTrips.Store(0)
	t.cacheHits.Store(0)
	t.cacheMisses.Store(0)

	t.latencyMu.Lock()
	t.latencySum = 0
	t.minLatencyMs = math.Inf(1)
	t.maxLatencyMs = 0
	t.lastLatencyMs = 0
	t.latencyMu.Unlock()

	t.resetMu.Lock()
	t.lastResetAt = time.Now()
	t.resetMu.Unlock()

	t.dirty.Store(true)
}

// GetMetrics returns an immutable snapshot, rebuilding it only when a mutator
// has run since the last build. Callers must treat the returned value as
// read-only; repeated calls with no intervening mutation return the exact
// same pointer.
func (t *Tracker) GetMetrics() *types.MetricsSnapshot {
	// The flag is cleared before the counters are read, so a mutation that
	// lands while the snapshot is being rebuilt leaves it set again.
	if !t.dirty.Swap(false) {
		if snap := t.snapshot.Load(); snap != nil {
			return snap
		}
	}

	t.latencyMu.Lock()
	sum, minMs, maxMs := t.latencySum, t.minLatencyMs, t.maxLatencyMs
	t.latencyMu.Unlock()

	t.resetMu.Lock()
	resetAt := t.lastResetAt
	t.resetMu.Unlock()

	successful := t.successfulCalls.Load()

	var avg float64
	if successful > 0 {
		avg = math.Round(sum / float64(successful))
	}
	if math.IsInf(minMs, 1) {
		minMs = 0
	}

	snap := &types.MetricsSnapshot{
		TotalCalls:          t.totalCalls.Load(),
		SuccessfulCalls:     successful,
		FailedCalls:         t.failedCalls.Load(),
		TotalRetries:        t.totalRetries.Load(),
		CircuitBreakerTrips: t.circuitBreakerTrips.Load(),
		CacheHits:           t.cacheHits.Load(),
		CacheMisses:         t.cacheMisses.Load(),
		AvgLatencyMs:        avg,
		MaxLatencyMs:        maxMs,
		MinLatencyMs:        minMs,
		LastResetAt:         resetAt,
	}

	t.snapshot.Store(snap)
	return snap
}

// LastLatencyMs returns the latency recorded by the most recent successful
// call, or 0 if no call has succeeded yet (or the tracker was just reset).
func (t *Tracker) LastLatencyMs() float64 {
	t.latencyMu.Lock()
	defer t.latencyMu.Unlock()
	return t.lastLatencyMs
}

// GetSuccessRate returns the rounded percentage of calls that succeeded,
// treating zero calls as a 100% success rate per the spec's convention.
func (t *Tracker) GetSuccessRate() float64 {
	total := t.totalCalls.Load()
	if total == 0 {
		return 100
	}
	return math.Round(float64(t.successfulCalls.Load()) / float64(total) * 100)
}

// GetCacheHitRate returns the rounded percentage of cache lookups that hit.
func (t *Tracker) GetCacheHitRate() float64 {
	hits, misses := t.cacheHits.Load(), t.cacheMisses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return math.Round(float64(hits) / float64(total) * 100)
}

var _ types.MetricsRecorder = (*Tracker)(nil)
