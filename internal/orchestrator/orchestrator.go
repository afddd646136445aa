// Package orchestrator implements the Call Orchestrator: the retry loop,
// cache read/write, and error mapping described in spec §4.G.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/berkeerdo/grpc-resilient/internal/callerr"
	"github.com/berkeerdo/grpc-resilient/internal/fallbackcache"
	"github.com/berkeerdo/grpc-resilient/internal/transport"
	"github.com/berkeerdo/grpc-resilient/internal/types"
)

// ConnectionManager is the subset of internal/connmgr.Manager the
// orchestrator depends on. Kept as an interface so the orchestrator can be
// tested against a fake without importing connmgr's goroutine machinery.
type ConnectionManager interface {
	EnsureConnected(ctx context.Context) bool
	Handle() transport.Handle
	HandleConnectionLost()
}

// Cache is the subset of fallbackcache.Cache the orchestrator depends on.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
}

// Gate optionally wraps each invoke attempt, per SPEC_FULL's enrichment
// section: the core never gates calls itself (Gate is nil by default), but
// a facade may plug in a bulkhead/circuit-breaker policy here. A tripped
// gate (e.g. an open circuit breaker) is treated as a non-retryable local
// failure rather than a wire error.
type Gate interface {
	Execute(ctx context.Context, fn func(context.Context) error) error
}

// Config bundles the orchestrator's fixed, construction-time dependencies.
type Config struct {
	ServiceName       string
	ConnectionManager ConnectionManager
	Metrics           types.MetricsRecorder
	Cache             Cache // nil when the fallback cache is disabled
	Serializer        types.Serializer
	Logger            types.Logger
	Gate              Gate // nil disables gating, matching the spec's default
	DefaultTimeout    time.Duration
	RetryCount        int
	RetryDelayMs      int64
	FallbackCacheTTL  time.Duration
}

// Orchestrator executes calls against the connection manager's transport
// handle, applying the spec's retry, cache, and metrics semantics.
type Orchestrator struct {
	serviceName      string
	connmgr          ConnectionManager
	metrics          types.MetricsRecorder
	cache            Cache
	serializer       types.Serializer
	logger           types.Logger
	gate             Gate
	defaultTimeout   time.Duration
	retryCount       int
	retryDelayMs     int64
	fallbackCacheTTL time.Duration
}

// New constructs an Orchestrator.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{
		serviceName:      cfg.ServiceName,
		connmgr:          cfg.ConnectionManager,
		metrics:          cfg.Metrics,
		cache:            cfg.Cache,
		serializer:       cfg.Serializer,
		logger:           cfg.Logger,
		gate:             cfg.Gate,
		defaultTimeout:   cfg.DefaultTimeout,
		retryCount:       cfg.RetryCount,
		retryDelayMs:     cfg.RetryDelayMs,
		fallbackCacheTTL: cfg.FallbackCacheTTL,
	}
}

// Call executes methodName against request, applying the retry loop and
// fallback-cache semantics of spec §4.G. response must be a pointer the
// transport can decode into.
func (o *Orchestrator) Call(ctx context.Context, methodName string, request, response any, opts *types.CallOptions) error {
	if opts == nil {
		opts = &types.CallOptions{}
	}

	effectiveCacheKey := opts.CacheKey
	if effectiveCacheKey == "" {
		effectiveCacheKey = fallbackcache.DeriveKey(methodName, request)
	}

	useCache := o.cache != nil && !opts.SkipCache

	maxAttempts := o.retryCount + 1
	if opts.SkipRetry {
		maxAttempts = 1
	}

	o.metrics.RecordCallStart()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if !o.connmgr.EnsureConnected(ctx) {
			return o.unavailablePath(useCache, effectiveCacheKey, response)
		}

		handle := o.connmgr.Handle()
		if handle == nil {
			return o.unavailablePath(useCache, effectiveCacheKey, response)
		}

		timeout := o.defaultTimeout
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		callCtx, cancel := context.WithTimeout(ctx, timeout)

		metadata := buildMetadata(opts)
		start := time.Now()
		var err error
		if o.gate != nil {
			err = o.gate.Execute(callCtx, func(ctx context.Context) error {
				return handle.Invoke(ctx, methodName, request, response, metadata)
			})
		} else {
			err = handle.Invoke(callCtx, methodName, request, response, metadata)
		}
		cancel()

		if err == nil {
			elapsedMs := float64(time.Since(start)) / float64(time.Millisecond)
			o.metrics.RecordSuccess(elapsedMs)
			if useCache {
				if encoded, encErr := o.serializer.Marshal(response); encErr == nil {
					_ = o.cache.Set(effectiveCacheKey, encoded, o.fallbackCacheTTL)
				}
			}
			return nil
		}

		lastErr = mapError(err)

		code := codeFromErr(err)
		lastAttempt := attempt == maxAttempts-1
		if !callerr.IsRetryable(code) || lastAttempt {
			break
		}

		o.metrics.RecordRetry()

		if callerr.IsConnectionLost(code) {
			o.connmgr.HandleConnectionLost()
		}

		o.logger.Warn("orchestrator: retrying after transient error",
			"service", o.serviceName, "method", methodName, "attempt", attempt, "error", lastErr)

		delayMs := callerr.RetryDelay(o.retryDelayMs, attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(delayMs) * time.Millisecond):
		}
	}

	o.metrics.RecordFailure()

	if useCache {
		if cached, ok := o.cache.Get(effectiveCacheKey); ok {
			o.metrics.RecordCacheHit()
			o.logger.Warn("orchestrator: serving stale cached response after retry exhaustion",
				"service", o.serviceName, "method", methodName)
			return o.serializer.Unmarshal(cached, response)
		}
		o.metrics.RecordCacheMiss()
	}

	return lastErr
}

// unavailablePath is invoked when ensureConnected() fails. Mirrors spec
// §4.G's "Unavailable path". response must be supplied by the caller so a
// cache hit here can decode directly into it.
func (o *Orchestrator) unavailablePath(useCache bool, cacheKey string, response any) error {
	if useCache {
		if cached, ok := o.cache.Get(cacheKey); ok {
			o.metrics.RecordCacheHit()
			o.logger.Info("orchestrator: serving cached response, service unavailable",
				"service", o.serviceName)
			return o.serializer.Unmarshal(cached, response)
		}
		o.metrics.RecordCacheMiss()
	}
	return types.NewUnavailableError(o.serviceName)
}

func buildMetadata(opts *types.CallOptions) map[string]string {
	md := make(map[string]string, len(opts.Metadata)+2)
	for k, v := range opts.Metadata {
		md[k] = v
	}
	if opts.Locale != "" {
		md["accept-language"] = opts.Locale
	}
	if opts.ClientURL != "" {
		md["x-client-url"] = opts.ClientURL
	}
	return md
}

// codeFromErr extracts the wire status code for retry classification,
// recognizing both the fake transport's InvokeError and real gRPC status
// errors.
func codeFromErr(err error) codes.Code {
	var ie *transport.InvokeError
	if errors.As(err, &ie) {
		return codes.Code(ie.Code)
	}
	return status.Code(err)
}

// mapError converts a wire error into the single CallError carrier the
// orchestrator surfaces to callers (spec §4.G "Error mapping"): message =
// details||message, code = wire code, grpcCode = alias of code.
func mapError(err error) error {
	var ie *transport.InvokeError
	if errors.As(err, &ie) {
		return types.NewCallError(ie.Code, ie.Message, ie.Details)
	}

	st, ok := status.FromError(err)
	if !ok {
		return types.NewCallError(int(codes.Unknown), err.Error(), "")
	}
	return types.NewCallError(int(st.Code()), st.Message(), "")
}
