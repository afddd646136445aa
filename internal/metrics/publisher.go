package metrics

import "time"

// Publisher sends Tracker snapshots and ad hoc events to an external metrics
// backend. A disabled or absent backend uses NoOpPublisher.
type Publisher interface {
	Gauge(name string, value float64, tags ...string)
	Incr(name string, tags ...string)
	Count(name string, value int64, tags ...string)
	Histogram(name string, value float64, tags ...string)
	Timing(name string, duration time.Duration, tags ...string)
	Event(title, text, alertType string, tags ...string)
	PublishSnapshot(snapshot SnapshotView)
	Close() error
}

// SnapshotView is the subset of a metrics snapshot a Publisher needs,
// decoupling the datadog/logging publishers from internal/types.
type SnapshotView struct {
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
}
