package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/berkeerdo/grpc-resilient/internal/config"
	"github.com/berkeerdo/grpc-resilient/internal/transport"
)

var _ transport.DialRetryer = (*RetryPolicy)(nil)

func TestNewRetryPolicyAppliesDefaults(t *testing.T) {
	rp := NewRetryPolicy(config.RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Multiplier:     3.0,
		Jitter:         true,
	})
	if rp.maxAttempts != 5 || rp.initialBackoff != 200*time.Millisecond || rp.maxBackoff != 5*time.Second || rp.multiplier != 3.0 || !rp.jitter {
		t.Fatalf("unexpected config: %+v", rp)
	}

	defaults := NewRetryPolicy(config.RetryConfig{})
	if defaults.maxAttempts != 3 || defaults.initialBackoff != 100*time.Millisecond || defaults.maxBackoff != 2*time.Second || defaults.multiplier != 2.0 {
		t.Errorf("zero-value config did not apply defaults: %+v", defaults)
	}
}

func TestRetryPolicyExecuteCtxRetriesTransientFailures(t *testing.T) {
	rp := NewRetryPolicy(config.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond})

	var attempts int
	err := rp.ExecuteCtx(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("channel not ready yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ExecuteCtx() error = %v, want nil", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryPolicyExecuteCtxGivesUpAfterMaxAttempts(t *testing.T) {
	rp := NewRetryPolicy(config.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond})

	var attempts int
	persistent := errors.New("channel stuck in transient failure")
	err := rp.ExecuteCtx(context.Background(), func(ctx context.Context) error {
		attempts++
		return persistent
	})
	if !errors.Is(err, persistent) {
		t.Errorf("ExecuteCtx() error = %v, want %v", err, persistent)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryPolicyExecuteCtxSkipsNonRetryableErrors(t *testing.T) {
	rp := NewRetryPolicy(config.RetryConfig{MaxAttempts: 5, InitialBackoff: time.Millisecond})

	var attempts int
	err := rp.ExecuteCtx(context.Background(), func(ctx context.Context) error {
		attempts++
		return ErrCircuitOpen
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("ExecuteCtx() error = %v, want ErrCircuitOpen", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on a non-retryable error)", attempts)
	}
}

func TestRetryPolicyExecuteCtxRespectsContextCancellation(t *testing.T) {
	rp := NewRetryPolicy(config.RetryConfig{MaxAttempts: 10, InitialBackoff: 100 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	var attempts int
	err := rp.ExecuteCtx(ctx, func(ctx context.Context) error {
		attempts++
		return errors.New("still not ready")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ExecuteCtx() error = %v, want context.Canceled", err)
	}
	if attempts < 1 {
		t.Error("expected at least one attempt before cancellation")
	}
}

func TestRetryPolicyExecuteCtxChecksContextBeforeFirstAttempt(t *testing.T) {
	rp := NewRetryPolicy(config.RetryConfig{MaxAttempts: 5, InitialBackoff: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rp.ExecuteCtx(ctx, func(ctx context.Context) error {
		t.Error("fn must not run when context is already cancelled")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ExecuteCtx() error = %v, want context.Canceled", err)
	}
}

func TestRetryPolicyExecuteWithResultReturnsFinalValue(t *testing.T) {
	rp := NewRetryPolicy(config.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond})

	var attempts int
	result, err := rp.ExecuteWithResult(context.Background(), func(ctx context.Context) (any, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("not ready")
		}
		return attempts, nil
	})
	if err != nil {
		t.Fatalf("ExecuteWithResult() error = %v, want nil", err)
	}
	if result != 3 {
		t.Errorf("ExecuteWithResult() result = %v, want 3", result)
	}
}

func TestRetryPolicyBackoffGrowthAndCap(t *testing.T) {
	rp := NewRetryPolicy(config.RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: 10 * time.Second, Multiplier: 2.0})

	if b := rp.calculateBackoff(1); b != 100*time.Millisecond {
		t.Errorf("backoff(1) = %v, want 100ms", b)
	}
	if b := rp.calculateBackoff(2); b != 200*time.Millisecond {
		t.Errorf("backoff(2) = %v, want 200ms", b)
	}
	if b := rp.calculateBackoff(3); b != 400*time.Millisecond {
		t.Errorf("backoff(3) = %v, want 400ms", b)
	}

	capped := NewRetryPolicy(config.RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: 500 * time.Millisecond, Multiplier: 10.0})
	if b := capped.calculateBackoff(5); b > 500*time.Millisecond {
		t.Errorf("backoff(5) = %v, want <= 500ms (capped)", b)
	}
}

func TestRetryPolicyJitterAddsVariation(t *testing.T) {
	rp := NewRetryPolicy(config.RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: 10 * time.Second, Multiplier: 2.0, Jitter: true})

	seen := make(map[time.Duration]bool)
	for i := 0; i < 20; i++ {
		seen[rp.calculateBackoff(2)] = true
	}
	if len(seen) < 2 {
		t.Error("jitter enabled but calculateBackoff produced a constant value")
	}
}

func TestRetryPolicyStatsAndReset(t *testing.T) {
	rp := NewRetryPolicy(config.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond})

	_ = rp.Execute(func() error { return nil }) // success, first attempt

	attempts := 0
	_ = rp.Execute(func() error {
		attempts++
		if attempts < 2 {
			return errors.New("fail once")
		}
		return nil
	}) // success after one retry

	_ = rp.Execute(func() error { return errors.New("always fails") }) // exhausts retries

	retries, success, failure := rp.Stats()
	if success != 2 {
		t.Errorf("success = %d, want 2", success)
	}
	if failure != 1 {
		t.Errorf("failure = %d, want 1", failure)
	}
	if retries < 1 {
		t.Errorf("retries = %d, want >= 1", retries)
	}

	rp.Reset()
	retries, success, failure = rp.Stats()
	if retries != 0 || success != 0 || failure != 0 {
		t.Errorf("Stats() after Reset = (%d, %d, %d), want zeros", retries, success, failure)
	}
}

func TestRetryPolicyConcurrentExecute(t *testing.T) {
	rp := NewRetryPolicy(config.RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond})

	var successCount atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := rp.Execute(func() error { return nil }); err == nil {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	if successCount.Load() != 50 {
		t.Errorf("successCount = %d, want 50", successCount.Load())
	}
}

func TestDisabledRetryPolicy(t *testing.T) {
	rp := NewDisabledRetryPolicy()

	var attempts int
	err := rp.Execute(func() error {
		attempts++
		return errors.New("dial refused")
	})
	if err == nil {
		t.Error("Execute() error = nil, want error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (disabled policy never retries)", attempts)
	}

	if retries, success, failure := rp.Stats(); retries != 0 || success != 0 || failure != 0 {
		t.Errorf("Stats() = (%d, %d, %d), want zeros", retries, success, failure)
	}
}
