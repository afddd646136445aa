package grpcresilient

import (
	"time"

	"github.com/berkeerdo/grpc-resilient/internal/types"
)

// WithTimeout overrides the default per-call timeout for a single Call.
func WithTimeout(d time.Duration) CallOption {
	return func(o *types.CallOptions) {
		o.Timeout = d
	}
}

// WithLocale attaches an accept-language metadata value to a single Call.
func WithLocale(locale string) CallOption {
	return func(o *types.CallOptions) {
		o.Locale = locale
	}
}

// WithClientURL attaches an x-client-url metadata value to a single Call.
func WithClientURL(url string) CallOption {
	return func(o *types.CallOptions) {
		o.ClientURL = url
	}
}

// WithSkipRetry disables the retry loop for a single Call.
func WithSkipRetry() CallOption {
	return func(o *types.CallOptions) {
		o.SkipRetry = true
	}
}

// WithSkipCache bypasses the fallback cache entirely for a single Call.
func WithSkipCache() CallOption {
	return func(o *types.CallOptions) {
		o.SkipCache = true
	}
}

// WithCacheKey overrides the derived cache key for a single Call.
func WithCacheKey(key string) CallOption {
	return func(o *types.CallOptions) {
		o.CacheKey = key
	}
}

// WithMetadata attaches arbitrary wire metadata to a single Call.
func WithMetadata(md map[string]string) CallOption {
	return func(o *types.CallOptions) {
		if o.Metadata == nil {
			o.Metadata = make(map[string]string, len(md))
		}
		for k, v := range md {
			o.Metadata[k] = v
		}
	}
}

// ClientOption configures a Client at construction time.
type ClientOption func(*clientOptions)

// clientOptions embeds the shared types.ManagerOptions shape (logger/metrics
// injection) and adds the facade-specific overrides.
type clientOptions struct {
	types.ManagerOptions
	serializer types.Serializer
	gate       Gate
	factory    TransportFactory
}

// WithLogger injects a custom Logger, overriding the default log/slog adapter.
func WithLogger(logger Logger) ClientOption {
	return func(o *clientOptions) {
		o.Logger = logger
	}
}

// WithMetrics injects a custom MetricsRecorder, overriding the built-in Tracker.
func WithMetrics(metrics MetricsRecorder) ClientOption {
	return func(o *clientOptions) {
		o.Metrics = metrics
	}
}

// WithSerializer injects a custom Serializer, overriding the default JSON codec.
func WithSerializer(serializer Serializer) ClientOption {
	return func(o *clientOptions) {
		o.serializer = serializer
	}
}

// WithGate injects a custom call gate (e.g. an externally built policy),
// overriding the Config-driven circuit breaker/bulkhead policy.
func WithGate(gate Gate) ClientOption {
	return func(o *clientOptions) {
		o.gate = gate
	}
}

// WithTransportFactory overrides the gRPC dialer, mainly useful for tests
// that substitute a fake transport.
func WithTransportFactory(factory TransportFactory) ClientOption {
	return func(o *clientOptions) {
		o.factory = factory
	}
}
