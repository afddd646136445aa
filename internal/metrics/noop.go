package metrics

import "time"

// NoOpPublisher is a no-operation metrics publisher, used when Metrics.Enabled
// is false. The Tracker accumulator itself is never disabled; this only
// silences the optional external-publishing path.
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
func (p *NoOpPublisher) PublishSnapshot(s SnapshotView)                      {}
func (p *NoOpPublisher) Close() error                                        { return nil }

var _ Publisher = (*NoOpPublisher)(nil)
