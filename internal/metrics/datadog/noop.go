package datadog

import (
	"time"

	"github.com/berkeerdo/grpc-resilient/internal/metrics"
)

// NoOpPublisher is a Publisher that does nothing. Used when DataDog is disabled.
type NoOpPublisher struct{}

// NewNoOpPublisher creates a new no-op publisher.
func NewNoOpPublisher() *NoOpPublisher {
	return &NoOpPublisher{}
}

func (p *NoOpPublisher) Gauge(name string, value float64, tags ...string)     {}
func (p *NoOpPublisher) Incr(name string, tags ...string)                    {}
func (p *NoOpPublisher) Count(name string, value int64, tags ...string)      {}
func (p *NoOpPublisher) Histogram(name string, value float64, tags ...string) {}
func (p *NoOpPublisher) Timing(name string, d time.Duration, tags ...string)  {}
func (p *NoOpPublisher) Event(title, text, alertType string, tags ...string) {}
func (p *NoOpPublisher) PublishSnapshot(s metrics.SnapshotView)              {}
func (p *NoOpPublisher) Close() error                                        { return nil }

var _ metrics.Publisher = (*NoOpPublisher)(nil)
