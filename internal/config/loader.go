package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Load loads configuration from a JSON file.
// If the file doesn't exist, returns default configuration.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithEnv loads configuration from a JSON file and applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

//nolint:gocyclo // Environment variable parsing requires many conditional checks
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GRPCRESILIENT_SERVICE_NAME"); v != "" {
		cfg.Identity.ServiceName = v
	}
	if v := os.Getenv("GRPCRESILIENT_GRPC_URL"); v != "" {
		cfg.Identity.GRPCURL = v
	}

	if v := os.Getenv("GRPCRESILIENT_TIMEOUT_MS"); v != "" {
		cfg.Timeouts.Timeout = parseDuration(v, cfg.Timeouts.Timeout)
	}
	if v := os.Getenv("GRPCRESILIENT_RETRY_COUNT"); v != "" {
		cfg.Timeouts.RetryCount = parseInt(v, cfg.Timeouts.RetryCount)
	}
	if v := os.Getenv("GRPCRESILIENT_RETRY_DELAY_MS"); v != "" {
		cfg.Timeouts.RetryDelay = parseDuration(v, cfg.Timeouts.RetryDelay)
	}
	if v := os.Getenv("GRPCRESILIENT_INITIAL_RECONNECT_DELAY_MS"); v != "" {
		cfg.Timeouts.InitialReconnectDelay = parseDuration(v, cfg.Timeouts.InitialReconnectDelay)
	}
	if v := os.Getenv("GRPCRESILIENT_MAX_RECONNECT_DELAY_MS"); v != "" {
		cfg.Timeouts.MaxReconnectDelay = parseDuration(v, cfg.Timeouts.MaxReconnectDelay)
	}
	if v := os.Getenv("GRPCRESILIENT_MAX_RECONNECT_ATTEMPTS"); v != "" {
		cfg.Timeouts.MaxReconnectAttempts = parseInt(v, cfg.Timeouts.MaxReconnectAttempts)
	}
	if v := os.Getenv("GRPCRESILIENT_KEEPALIVE_TIME_MS"); v != "" {
		cfg.Timeouts.KeepaliveTime = parseDuration(v, cfg.Timeouts.KeepaliveTime)
	}
	if v := os.Getenv("GRPCRESILIENT_KEEPALIVE_TIMEOUT_MS"); v != "" {
		cfg.Timeouts.KeepaliveTimeout = parseDuration(v, cfg.Timeouts.KeepaliveTimeout)
	}

	if v := os.Getenv("GRPCRESILIENT_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = parseBool(v)
	}
	if v := os.Getenv("GRPCRESILIENT_CACHE_TTL_MS"); v != "" {
		cfg.Cache.DefaultTTL = parseDuration(v, cfg.Cache.DefaultTTL)
	}
	if v := os.Getenv("GRPCRESILIENT_CACHE_MAX_SIZE"); v != "" {
		cfg.Cache.MaxSize = parseInt(v, cfg.Cache.MaxSize)
	}

	if v := os.Getenv("GRPCRESILIENT_TLS_INSECURE"); v != "" {
		cfg.TLS.Insecure = parseBool(v)
	}
	if v := os.Getenv("GRPCRESILIENT_TLS_CERT_FILE"); v != "" {
		cfg.TLS.CertFile = v
	}
	if v := os.Getenv("GRPCRESILIENT_TLS_KEY_FILE"); v != "" {
		cfg.TLS.KeyFile = v
	}
	if v := os.Getenv("GRPCRESILIENT_TLS_CA_FILE"); v != "" {
		cfg.TLS.CAFile = v
	}
	if v := os.Getenv("GRPCRESILIENT_TLS_SERVER_NAME"); v != "" {
		cfg.TLS.ServerName = v
	}

	if v := os.Getenv("GRPCRESILIENT_CIRCUIT_BREAKER_ENABLED"); v != "" {
		cfg.CircuitBreaker.Enabled = parseBool(v)
	}
	if v := os.Getenv("GRPCRESILIENT_CIRCUIT_BREAKER_FAILURE_THRESHOLD"); v != "" {
		cfg.CircuitBreaker.FailureThreshold = parseInt(v, cfg.CircuitBreaker.FailureThreshold)
	}
	if v := os.Getenv("GRPCRESILIENT_CIRCUIT_BREAKER_OPEN_DURATION"); v != "" {
		cfg.CircuitBreaker.OpenDuration = parseDuration(v, cfg.CircuitBreaker.OpenDuration)
	}

	if v := os.Getenv("GRPCRESILIENT_RETRY_POLICY_ENABLED"); v != "" {
		cfg.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("GRPCRESILIENT_RETRY_POLICY_MAX_ATTEMPTS"); v != "" {
		cfg.Retry.MaxAttempts = parseInt(v, cfg.Retry.MaxAttempts)
	}

	if v := os.Getenv("GRPCRESILIENT_BULKHEAD_ENABLED"); v != "" {
		cfg.Bulkhead.Enabled = parseBool(v)
	}
	if v := os.Getenv("GRPCRESILIENT_BULKHEAD_MAX_CONCURRENT"); v != "" {
		cfg.Bulkhead.MaxConcurrent = parseInt(v, cfg.Bulkhead.MaxConcurrent)
	}

	if v := os.Getenv("GRPCRESILIENT_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}

	if v := os.Getenv("DD_AGENT_HOST"); v != "" {
		cfg.Metrics.DataDog.AgentHost = v
		cfg.Metrics.DataDog.Enabled = true
	}
	if v := os.Getenv("DD_DOGSTATSD_PORT"); v != "" {
		cfg.Metrics.DataDog.Port = parseInt(v, cfg.Metrics.DataDog.Port)
	}
	if v := os.Getenv("DD_SERVICE"); v != "" {
		cfg.Metrics.DataDog.Prefix = v
	}
	if v := os.Getenv("DD_ENV"); v != "" {
		cfg.Metrics.DataDog.Tags = append(cfg.Metrics.DataDog.Tags, "env:"+v)
	}
	if v := os.Getenv("DD_VERSION"); v != "" {
		cfg.Metrics.DataDog.Tags = append(cfg.Metrics.DataDog.Tags, "version:"+v)
	}

	if v := os.Getenv("GRPCRESILIENT_DATADOG_ENABLED"); v != "" {
		if os.Getenv("DD_AGENT_HOST") == "" {
			cfg.Metrics.DataDog.Enabled = parseBool(v)
		}
	}
	if v := os.Getenv("GRPCRESILIENT_DATADOG_PREFIX"); v != "" {
		if os.Getenv("DD_SERVICE") == "" {
			cfg.Metrics.DataDog.Prefix = v
		}
	}
}

// Validate checks if the configuration is valid, per the spec's data-model
// bounds on cache size and TTL and the usual positivity checks on the
// optional enrichment layers.
//
//nolint:gocyclo // Validation requires many independent field checks
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Identity.ServiceName) == "" {
		return fmt.Errorf("identity.serviceName is required")
	}

	if c.Cache.Enabled {
		if c.Cache.MaxSize < 1 || c.Cache.MaxSize > 100000 {
			return fmt.Errorf("cache.maxCacheSize must be in [1, 100000]")
		}
		if c.Cache.DefaultTTL < 10*time.Millisecond || c.Cache.DefaultTTL > 86400000*time.Millisecond {
			return fmt.Errorf("cache.fallbackCacheTtlMs must be in [10, 86400000] ms")
		}
	}

	if c.Timeouts.RetryCount < 0 {
		return fmt.Errorf("timeouts.retryCount must be non-negative")
	}
	if c.Timeouts.MaxReconnectAttempts < 0 {
		return fmt.Errorf("timeouts.maxReconnectAttempts must be non-negative (0 = unbounded)")
	}

	if c.CircuitBreaker.Enabled {
		if c.CircuitBreaker.FailureThreshold <= 0 {
			return fmt.Errorf("circuitBreaker.failureThreshold must be positive")
		}
		if c.CircuitBreaker.OpenDuration <= 0 {
			return fmt.Errorf("circuitBreaker.openDuration must be positive")
		}
	}

	if c.Retry.Enabled {
		if c.Retry.MaxAttempts <= 0 {
			return fmt.Errorf("retry.maxAttempts must be positive")
		}
	}

	if c.Bulkhead.Enabled {
		if c.Bulkhead.MaxConcurrent <= 0 {
			return fmt.Errorf("bulkhead.maxConcurrent must be positive")
		}
	}

	return nil
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

func parseInt(s string, defaultVal int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultVal
	}
	return v
}

func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)

	if d, err := time.ParseDuration(s); err == nil {
		return d
	}

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}

	return defaultVal
}
