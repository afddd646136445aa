package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/berkeerdo/grpc-resilient/internal/types"
)

// BackgroundPublisher publishes metrics snapshots at regular intervals with
// context-based cancellation support.
type BackgroundPublisher struct {
	publisher Publisher
	logger    *slog.Logger
	getMetric func() *types.MetricsSnapshot
	cancel    context.CancelFunc
	ctx       context.Context
	wg        sync.WaitGroup
	interval  time.Duration
}

// NewBackgroundPublisher creates a new background publisher. snapshotFn is
// called on each interval to get the current metrics snapshot.
func NewBackgroundPublisher(
	publisher Publisher,
	interval time.Duration,
	snapshotFn func() *types.MetricsSnapshot,
	logger *slog.Logger,
) *BackgroundPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &BackgroundPublisher{
		publisher: publisher,
		interval:  interval,
		logger:    logger.With("component", "metrics-background"),
		getMetric: snapshotFn,
	}
}

// Start begins the background publishing loop. The provided context controls
// the lifecycle of the background goroutine.
func (b *BackgroundPublisher) Start(ctx context.Context) {
	b.ctx, b.cancel = context.WithCancel(ctx)
	b.wg.Add(1)
	go b.run()
	b.logger.Info("background metrics publisher started", "interval", b.interval)
}

// Stop cancels the background context and waits for shutdown.
func (b *BackgroundPublisher) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()
	b.logger.Info("background metrics publisher stopped")
}

func (b *BackgroundPublisher) run() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			b.publish()
			return
		case <-ticker.C:
			b.publish()
		}
	}
}

func (b *BackgroundPublisher) publish() {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("recovered from panic in metrics publisher", "panic", r)
		}
	}()

	if b.getMetric == nil {
		return
	}

	snapshot := b.getMetric()
	if snapshot != nil {
		b.publisher.PublishSnapshot(toSnapshotView(snapshot))
	}
}

// PublishNow triggers an immediate metrics publish.
func (b *BackgroundPublisher) PublishNow() {
	b.publish()
}

func toSnapshotView(s *types.MetricsSnapshot) SnapshotView {
	return SnapshotView{
		TotalCalls:          s.TotalCalls,
		SuccessfulCalls:     s.SuccessfulCalls,
		FailedCalls:         s.FailedCalls,
		TotalRetries:        s.TotalRetries,
		CircuitBreakerTrips: s.CircuitBreakerTrips,
		CacheHits:           s.CacheHits,
		CacheMisses:         s.CacheMisses,
		AvgLatencyMs:        s.AvgLatencyMs,
		MaxLatencyMs:        s.MaxLatencyMs,
		MinLatencyMs:        s.MinLatencyMs,
	}
}
