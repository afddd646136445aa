package types

import "time"

// CallOption is a functional option for a single Call invocation, covering
// spec §4.G's per-call options (timeoutMs, locale, clientUrl, skipRetry,
// cacheKey, skipCache) plus arbitrary extra wire metadata.
type CallOption func(*CallOptions)

// CallOptions holds the resolved options for one Call invocation.
type CallOptions struct {
	Timeout  time.Duration
	Locale   string
	ClientURL string
	SkipRetry bool
	SkipCache bool
	CacheKey  string
	Metadata  map[string]string
}

// ApplyCallOptions builds a CallOptions from functional options.
func ApplyCallOptions(opts ...CallOption) *CallOptions {
	o := &CallOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ManagerOptions holds construction-time overrides for the client, mirroring
// the teacher's ManagerOptions shape (logger/metrics injection).
type ManagerOptions struct {
	Logger  Logger
	Metrics MetricsRecorder
}

type ManagerOption func(*ManagerOptions)
