// Package config provides configuration management for the resilience engine.
package config

import (
	"time"

	"github.com/berkeerdo/grpc-resilient/internal/types"
)

// SecretString is a string type that redacts its value when marshaled to JSON.
type SecretString = types.SecretString

// NewSecretString creates a new SecretString with the provided value.
func NewSecretString(value string) SecretString {
	return types.NewSecretString(value)
}

// Config contains all configuration for a resilience-engine client instance.
//
//nolint:govet // Configuration struct - logical grouping prioritized over alignment
type Config struct {
	Identity       IdentityConfig       `json:"identity"`
	Timeouts       TimeoutsConfig       `json:"timeouts"`
	Cache          CacheConfig          `json:"cache"`
	TLS            TLSConfig            `json:"tls"`
	Metrics        MetricsConfig        `json:"metrics"`
	CircuitBreaker CircuitBreakerConfig `json:"circuitBreaker"`
	Retry          RetryConfig          `json:"retry"`
	Bulkhead       BulkheadConfig       `json:"bulkhead"`
	KeyValidation  KeyValidationConfig  `json:"keyValidation"`
}

// IdentityConfig names the remote service this instance wraps.
type IdentityConfig struct {
	ServiceName string `json:"serviceName"`
	GRPCURL     string `json:"grpcUrl"`
}

// TimeoutsConfig holds every duration the spec's client configuration names,
// stored as time.Duration but JSON-marshaled in milliseconds via the
// durationMs helper type.
//
//nolint:govet // Configuration struct - logical grouping prioritized over alignment
type TimeoutsConfig struct {
	Timeout               time.Duration `json:"timeoutMs"`
	RetryCount            int           `json:"retryCount"`
	RetryDelay            time.Duration `json:"retryDelayMs"`
	InitialReconnectDelay time.Duration `json:"initialReconnectDelayMs"`
	MaxReconnectDelay     time.Duration `json:"maxReconnectDelayMs"`
	MaxReconnectAttempts  int           `json:"maxReconnectAttempts"` // 0 = unbounded
	KeepaliveTime         time.Duration `json:"keepaliveTimeMs"`
	KeepaliveTimeout      time.Duration `json:"keepaliveTimeoutMs"`
}

// CacheConfig controls the Fallback Cache.
type CacheConfig struct {
	Enabled    bool          `json:"enableFallbackCache"`
	DefaultTTL time.Duration `json:"fallbackCacheTtlMs"`
	MaxSize    int           `json:"maxCacheSize"`
}

// TLSConfig carries an opaque credentials descriptor passed through to the
// transport factory; the core never inspects certificate material itself.
type TLSConfig struct {
	Insecure   bool         `json:"insecure"`
	CertFile   string       `json:"certFile"`
	KeyFile    string       `json:"keyFile"`
	CAFile     string       `json:"caFile"`
	ServerName string       `json:"serverName"`
	Password   SecretString `json:"password"`
}

// KeyValidationConfig contains configuration for fallback-cache key validation.
type KeyValidationConfig struct {
	MaxKeyLength      int  `json:"maxKeyLength"`
	Enabled           bool `json:"enabled"`
	AllowEmpty        bool `json:"allowEmpty"`
	AllowControlChars bool `json:"allowControlChars"`
}

// ToTypesConfig converts this config to a types.KeyValidationConfig.
func (c KeyValidationConfig) ToTypesConfig() types.KeyValidationConfig {
	return types.KeyValidationConfig{
		MaxKeyLength:      c.MaxKeyLength,
		AllowEmpty:        c.AllowEmpty,
		AllowControlChars: c.AllowControlChars,
	}
}

// CircuitBreakerConfig contains configuration for the optional circuit
// breaker enrichment layer. The core orchestrator always counts trips for
// metrics purposes; gating calls on breaker state only happens when Enabled.
type CircuitBreakerConfig struct {
	Enabled             bool          `json:"enabled"`
	FailureThreshold    int           `json:"failureThreshold"`
	SuccessThreshold    int           `json:"successThreshold"`
	OpenDuration        time.Duration `json:"openDuration"`
	HalfOpenMaxRequests int           `json:"halfOpenMaxRequests"`
}

// RetryConfig contains configuration for the optional generic retry-policy
// enrichment layer (distinct from the orchestrator's own mandatory,
// uncapped/unjittered retry loop described in the call-execution design).
type RetryConfig struct {
	InitialBackoff time.Duration `json:"initialBackoff"`
	MaxBackoff     time.Duration `json:"maxBackoff"`
	Multiplier     float64       `json:"multiplier"`
	MaxAttempts    int           `json:"maxAttempts"`
	Enabled        bool          `json:"enabled"`
	Jitter         bool          `json:"jitter"`
}

// BulkheadConfig contains configuration for the optional bulkhead pattern.
type BulkheadConfig struct {
	Enabled        bool          `json:"enabled"`
	MaxConcurrent  int           `json:"maxConcurrent"`
	MaxQueue       int           `json:"maxQueue"`
	AcquireTimeout time.Duration `json:"acquireTimeout"`
}

// MetricsConfig contains configuration for metrics publishing.
//
//nolint:govet // Small config struct - minimal alignment benefit
type MetricsConfig struct {
	PublishInterval time.Duration `json:"publishInterval"`
	DataDog         DataDogConfig `json:"datadog"`
	Enabled         bool          `json:"enabled"`
}

// DataDogConfig contains configuration for DataDog metrics publishing.
//
//nolint:govet // Small config struct - minimal alignment benefit
type DataDogConfig struct {
	Tags                   []string `json:"tags"`
	AgentHost              string   `json:"agentHost"`
	Prefix                 string   `json:"prefix"`
	Port                   int      `json:"port"`
	PublishIntervalSeconds int      `json:"publishIntervalSeconds"`
	Enabled                bool     `json:"enabled"`
}
