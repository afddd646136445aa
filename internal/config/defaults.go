package config

import "time"

// DefaultConfig returns a configuration with the spec's default values.
func DefaultConfig() *Config {
	return &Config{
		Timeouts: TimeoutsConfig{
			Timeout:               5 * time.Second,
			RetryCount:            3,
			RetryDelay:            1 * time.Second,
			InitialReconnectDelay: 1 * time.Second,
			MaxReconnectDelay:     30 * time.Second,
			MaxReconnectAttempts:  0, // unbounded
			KeepaliveTime:         30 * time.Second,
			KeepaliveTimeout:      10 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: 60 * time.Second,
			MaxSize:    100,
		},
		TLS: TLSConfig{
			Insecure: true,
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:             false,
			FailureThreshold:    5,
			SuccessThreshold:    2,
			OpenDuration:        30 * time.Second,
			HalfOpenMaxRequests: 3,
		},
		Retry: RetryConfig{
			Enabled:        false,
			MaxAttempts:    3,
			InitialBackoff: 100 * time.Millisecond,
			MaxBackoff:     2 * time.Second,
			Multiplier:     2.0,
			Jitter:         true,
		},
		Bulkhead: BulkheadConfig{
			Enabled:        false,
			MaxConcurrent:  100,
			MaxQueue:       50,
			AcquireTimeout: 100 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			Enabled:         true,
			PublishInterval: 10 * time.Second,
			DataDog: DataDogConfig{
				Enabled:                false,
				AgentHost:              "127.0.0.1",
				Port:                   8125,
				Prefix:                 "grpcresilient",
				Tags:                   []string{},
				PublishIntervalSeconds: 30,
			},
		},
		KeyValidation: KeyValidationConfig{
			Enabled:           true,
			MaxKeyLength:      1024,
			AllowEmpty:        false,
			AllowControlChars: false,
		},
	}
}

// ForTesting returns a minimal configuration suitable for unit tests: short
// timeouts, cache enabled with a small bound, and every optional enrichment
// layer disabled so tests exercise only the mandatory core path.
func ForTesting() *Config {
	return &Config{
		Identity: IdentityConfig{
			ServiceName: "test-service",
			GRPCURL:     "localhost:50051",
		},
		Timeouts: TimeoutsConfig{
			Timeout:               1 * time.Second,
			RetryCount:            1,
			RetryDelay:            10 * time.Millisecond,
			InitialReconnectDelay: 10 * time.Millisecond,
			MaxReconnectDelay:     100 * time.Millisecond,
			MaxReconnectAttempts:  3,
			KeepaliveTime:         1 * time.Second,
			KeepaliveTimeout:      1 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: 1 * time.Minute,
			MaxSize:    10,
		},
		TLS: TLSConfig{
			Insecure: true,
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:             false,
			FailureThreshold:    3,
			SuccessThreshold:    1,
			OpenDuration:        1 * time.Second,
			HalfOpenMaxRequests: 1,
		},
		Retry: RetryConfig{
			Enabled:        false,
			MaxAttempts:    1,
			InitialBackoff: 10 * time.Millisecond,
			MaxBackoff:     100 * time.Millisecond,
			Multiplier:     2.0,
			Jitter:         false,
		},
		Bulkhead: BulkheadConfig{
			Enabled:        false,
			MaxConcurrent:  10,
			MaxQueue:       5,
			AcquireTimeout: 50 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			Enabled:         false,
			PublishInterval: 1 * time.Second,
		},
		KeyValidation: KeyValidationConfig{
			Enabled:           true,
			MaxKeyLength:      1024,
			AllowEmpty:        false,
			AllowControlChars: false,
		},
	}
}
