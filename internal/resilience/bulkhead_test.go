package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/berkeerdo/grpc-resilient/internal/config"
)

func TestNewBulkheadAppliesDefaults(t *testing.T) {
	b := NewBulkhead(config.BulkheadConfig{
		MaxConcurrent:  20,
		MaxQueue:       10,
		AcquireTimeout: 500 * time.Millisecond,
	})
	if b.maxConcurrent != 20 || b.maxQueue != 10 || b.acquireTimeout != 500*time.Millisecond {
		t.Fatalf("unexpected config: %+v", b)
	}

	defaults := NewBulkhead(config.BulkheadConfig{})
	if defaults.maxConcurrent != 100 || defaults.maxQueue != 50 || defaults.acquireTimeout != 100*time.Millisecond {
		t.Errorf("zero-value config did not apply defaults: %+v", defaults)
	}
}

func TestBulkheadExecuteCtxPropagatesResult(t *testing.T) {
	b := NewBulkhead(config.BulkheadConfig{MaxConcurrent: 10})

	var ran bool
	err := b.ExecuteCtx(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err != nil || !ran {
		t.Fatalf("ExecuteCtx() error = %v, ran = %v", err, ran)
	}

	invokeErr := errors.New("invoke failed")
	if err := b.Execute(func() error { return invokeErr }); !errors.Is(err, invokeErr) {
		t.Errorf("Execute() error = %v, want %v", err, invokeErr)
	}
}

func fillBulkhead(t *testing.T, b *Bulkhead, n int) (release func()) {
	t.Helper()
	started := make(chan struct{}, n)
	blocking := make(chan struct{})
	for i := 0; i < n; i++ {
		go func() {
			_ = b.ExecuteCtx(context.Background(), func(ctx context.Context) error {
				started <- struct{}{}
				<-blocking
				return nil
			})
		}()
	}
	for i := 0; i < n; i++ {
		<-started
	}
	return func() { close(blocking) }
}

func TestBulkheadAdmitsUpToConcurrencyLimit(t *testing.T) {
	b := NewBulkhead(config.BulkheadConfig{MaxConcurrent: 3, MaxQueue: 2, AcquireTimeout: 100 * time.Millisecond})

	release := fillBulkhead(t, b, 3)
	defer release()

	if active := b.ActiveCount(); active != 3 {
		t.Errorf("ActiveCount() = %d, want 3", active)
	}
}

func TestBulkheadQueuesBeyondConcurrencyLimit(t *testing.T) {
	b := NewBulkhead(config.BulkheadConfig{MaxConcurrent: 1, MaxQueue: 5, AcquireTimeout: 500 * time.Millisecond})

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = b.ExecuteCtx(context.Background(), func(ctx context.Context) error {
			started <- struct{}{}
			<-release
			return nil
		})
	}()
	<-started

	var completed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := b.Execute(func() error { completed.Add(1); return nil }); err != nil {
				t.Errorf("queued call rejected: %v", err)
			}
		}()
	}
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	if c := completed.Load(); c != 3 {
		t.Errorf("completed = %d, want 3", c)
	}
}

func TestBulkheadRejectsOnceSlotsAndQueueAreFull(t *testing.T) {
	b := NewBulkhead(config.BulkheadConfig{MaxConcurrent: 2, MaxQueue: 1, AcquireTimeout: 10 * time.Millisecond})

	release := fillBulkhead(t, b, 3)
	defer release()

	err := b.Execute(func() error { return nil })
	if !errors.Is(err, ErrBulkheadFull) && !errors.Is(err, ErrBulkheadTimeout) {
		t.Errorf("Execute() error = %v, want ErrBulkheadFull or ErrBulkheadTimeout", err)
	}
}

func TestBulkheadAcquireTimesOut(t *testing.T) {
	b := NewBulkhead(config.BulkheadConfig{MaxConcurrent: 1, MaxQueue: 1, AcquireTimeout: 50 * time.Millisecond})
	release := fillBulkhead(t, b, 2)
	defer release()

	start := time.Now()
	err := b.Execute(func() error { return nil })
	elapsed := time.Since(start)

	if !errors.Is(err, ErrBulkheadTimeout) {
		t.Errorf("Execute() error = %v, want ErrBulkheadTimeout", err)
	}
	if elapsed < 40*time.Millisecond || elapsed > 250*time.Millisecond {
		t.Errorf("elapsed = %v, expected ~50ms", elapsed)
	}
}

func TestBulkheadRespectsContextCancellation(t *testing.T) {
	b := NewBulkhead(config.BulkheadConfig{MaxConcurrent: 1, MaxQueue: 1, AcquireTimeout: time.Second})
	release := fillBulkhead(t, b, 2)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	err := b.ExecuteCtx(ctx, func(ctx context.Context) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ExecuteCtx() error = %v, want context.Canceled", err)
	}
}

func TestBulkheadExecuteWithResult(t *testing.T) {
	b := NewBulkhead(config.BulkheadConfig{MaxConcurrent: 10})

	result, err := b.ExecuteWithResult(context.Background(), func(ctx context.Context) (any, error) {
		return "decoded-response", nil
	})
	if err != nil || result != "decoded-response" {
		t.Errorf("ExecuteWithResult() = (%v, %v), want (decoded-response, nil)", result, err)
	}
}

func TestBulkheadStatsAndRejectedCount(t *testing.T) {
	b := NewBulkhead(config.BulkheadConfig{MaxConcurrent: 1, MaxQueue: 1, AcquireTimeout: time.Millisecond})
	release := fillBulkhead(t, b, 2)

	for i := 0; i < 5; i++ {
		_ = b.Execute(func() error { return nil })
	}
	release()

	if rejected := b.RejectedCount(); rejected < 1 {
		t.Errorf("RejectedCount() = %d, want >= 1", rejected)
	}

	stable := NewBulkhead(config.BulkheadConfig{MaxConcurrent: 5, MaxQueue: 3})
	for i := 0; i < 10; i++ {
		_ = stable.Execute(func() error { return nil })
	}
	stats := stable.Stats()
	if stats.MaxConcurrent != 5 || stats.MaxQueue != 3 || stats.TotalExecuted != 10 || stats.Active != 0 {
		t.Errorf("Stats() = %+v, unexpected", stats)
	}
}

func TestDisabledBulkhead(t *testing.T) {
	b := NewDisabledBulkhead()

	var wg sync.WaitGroup
	var count atomic.Int32
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := b.Execute(func() error { count.Add(1); return nil }); err != nil {
				t.Errorf("Execute() error = %v, want nil", err)
			}
		}()
	}
	wg.Wait()

	if c := count.Load(); c != 200 {
		t.Errorf("count = %d, want 200", c)
	}
	if stats := b.Stats(); stats.Active != 0 || stats.Queued != 0 || stats.TotalRejected != 0 {
		t.Errorf("Stats() = %+v, want all zeros", stats)
	}
	if slots := b.AvailableSlots(); slots < 1000 {
		t.Errorf("AvailableSlots() = %d, want a large number", slots)
	}
}
