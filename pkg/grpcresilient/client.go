package grpcresilient

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/berkeerdo/grpc-resilient/internal/config"
	"github.com/berkeerdo/grpc-resilient/internal/connmgr"
	"github.com/berkeerdo/grpc-resilient/internal/fallbackcache"
	"github.com/berkeerdo/grpc-resilient/internal/metrics"
	"github.com/berkeerdo/grpc-resilient/internal/orchestrator"
	"github.com/berkeerdo/grpc-resilient/internal/resilience"
	"github.com/berkeerdo/grpc-resilient/internal/transport"
	"github.com/berkeerdo/grpc-resilient/internal/types"
)

// Gate is the optional per-attempt call gate a Client's orchestrator
// consults before each invoke. Satisfied by *resilience.Policy.
type Gate = orchestrator.Gate

// Client is the public handle on the resilience engine: connection
// lifecycle, call execution, the fallback cache, and metrics, wired
// together the way the teacher's rentfree.go/cache.go wire a CacheManager.
type Client struct {
	serviceName string
	connmgr     *connmgr.Manager
	orch        *orchestrator.Orchestrator
	cache       *fallbackcache.Cache
	tracker     *metrics.Tracker
	publisher   metrics.Publisher
	background  *metrics.BackgroundPublisher
	logger      types.Logger
	events      *eventBus
}

// New creates a Client with default configuration, pointed at serviceName
// over grpcURL. Use NewFromConfig or NewFromFile for full control over
// timeouts, TLS, and the optional enrichment layers.
func New(serviceName, grpcURL string, opts ...ClientOption) (*Client, error) {
	cfg := config.DefaultConfig()
	cfg.Identity.ServiceName = serviceName
	cfg.Identity.GRPCURL = grpcURL
	return NewFromConfig(cfg, opts...)
}

// NewFromFile creates a Client from a JSON config file with environment
// variable overrides applied on top.
func NewFromFile(path string, opts ...ClientOption) (*Client, error) {
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, opts...)
}

// NewFromConfig creates a Client from an explicit configuration.
func NewFromConfig(cfg *config.Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidConfig, err)
	}

	co := &clientOptions{}
	for _, opt := range opts {
		opt(co)
	}

	logger := co.Logger
	if logger == nil {
		logger = NewSlogLogger(slog.Default().With("service", cfg.Identity.ServiceName))
	}

	tracker := metrics.NewTracker()
	var metricsRecorder types.MetricsRecorder = tracker
	if co.Metrics != nil {
		metricsRecorder = co.Metrics
	}

	serializer := co.serializer
	if serializer == nil {
		serializer = fallbackcache.NewJSONSerializer()
	}

	events := newEventBus()

	factory := co.factory
	if factory == nil {
		var retryer transport.DialRetryer
		if cfg.Retry.Enabled {
			retryer = resilience.NewRetryPolicy(cfg.Retry)
		}
		factory = transport.NewFactory(retryer)
	}

	c := &Client{
		serviceName: cfg.Identity.ServiceName,
		tracker:     tracker,
		logger:      logger,
		events:      events,
	}

	connMgr := connmgr.New(connmgr.Config{
		ServiceName: cfg.Identity.ServiceName,
		Factory:     factory,
		Descriptor: transport.Descriptor{
			URL:              cfg.Identity.GRPCURL,
			Insecure:         cfg.TLS.Insecure,
			CertFile:         cfg.TLS.CertFile,
			KeyFile:          cfg.TLS.KeyFile,
			CAFile:           cfg.TLS.CAFile,
			ServerName:       cfg.TLS.ServerName,
			KeepaliveTime:    cfg.Timeouts.KeepaliveTime,
			KeepaliveTimeout: cfg.Timeouts.KeepaliveTimeout,
		},
		Timeout:                 cfg.Timeouts.Timeout,
		InitialReconnectDelayMs: cfg.Timeouts.InitialReconnectDelay.Milliseconds(),
		MaxReconnectDelayMs:     cfg.Timeouts.MaxReconnectDelay.Milliseconds(),
		MaxReconnectAttempts:    cfg.Timeouts.MaxReconnectAttempts,
		Logger:                  logger,
		Events:                  &connMgrEventAdapter{client: c},
	})
	c.connmgr = connMgr

	var fc *fallbackcache.Cache
	if cfg.Cache.Enabled {
		cache, err := fallbackcache.New(cfg.Identity.ServiceName, logger, cfg.Cache.MaxSize, cfg.Cache.DefaultTTL)
		if err != nil {
			return nil, err
		}
		fc = cache
	}
	c.cache = fc

	var gate Gate
	if co.gate != nil {
		gate = co.gate
	} else if cfg.CircuitBreaker.Enabled || cfg.Bulkhead.Enabled {
		policy := resilience.NewPolicy(cfg.Identity.ServiceName, cfg)
		policy.SetOnCircuitStateChange(func(from, to resilience.State) {
			logger.Warn("grpcresilient: circuit breaker state change",
				"breaker", policy.Name(), "from", from, "to", to)
			if to == resilience.StateOpen {
				metricsRecorder.RecordCircuitBreakerTrip()
				c.events.publish(Event{Name: types.EventCircuitBreakerTrip})
			}
		})
		gate = policyGate{policy: policy}
	}

	var orchCache orchestrator.Cache
	if fc != nil {
		orchCache = fc
	}

	c.orch = orchestrator.New(orchestrator.Config{
		ServiceName:       cfg.Identity.ServiceName,
		ConnectionManager: connMgr,
		Metrics:           metricsRecorder,
		Cache:             orchCache,
		Serializer:        serializer,
		Logger:            logger,
		Gate:              gate,
		DefaultTimeout:    cfg.Timeouts.Timeout,
		RetryCount:        cfg.Timeouts.RetryCount,
		RetryDelayMs:      cfg.Timeouts.RetryDelay.Milliseconds(),
		FallbackCacheTTL:  cfg.Cache.DefaultTTL,
	})

	if cfg.Metrics.Enabled {
		publisher, err := newMetricsPublisher(cfg, logger)
		if err != nil {
			return nil, err
		}
		c.publisher = publisher
		c.background = metrics.NewBackgroundPublisher(publisher, cfg.Metrics.PublishInterval, tracker.GetMetrics, slog.Default())
		c.background.Start(context.Background())
	}

	return c, nil
}

// policyGate adapts *resilience.Policy to orchestrator.Gate.
type policyGate struct {
	policy *resilience.Policy
}

func (g policyGate) Execute(ctx context.Context, fn func(context.Context) error) error {
	return g.policy.Execute(ctx, fn)
}

// connMgrEventAdapter forwards Connection Manager lifecycle events onto the
// client's event bus, translating them into the spec's named events.
type connMgrEventAdapter struct {
	client *Client
}

func (a *connMgrEventAdapter) OnConnecting() {
	a.client.events.publish(Event{Name: types.EventConnecting})
}

func (a *connMgrEventAdapter) OnConnected() {
	a.client.events.publish(Event{Name: types.EventConnected})
}

func (a *connMgrEventAdapter) OnDisconnected() {
	a.client.events.publish(Event{Name: types.EventDisconnected})
}

func (a *connMgrEventAdapter) OnError(err error) {
	a.client.events.publish(Event{Name: types.EventError, Err: err})
}

// EnsureConnected blocks until a connection is established or ctx is done,
// returning whether the client is connected.
func (c *Client) EnsureConnected(ctx context.Context) bool {
	return c.connmgr.EnsureConnected(ctx)
}

// IsConnected reports whether the underlying transport is currently connected.
func (c *Client) IsConnected() bool {
	return c.connmgr.IsConnected()
}

// Call invokes methodName against request, decoding the result into
// response. It applies the retry loop, fallback cache, and metrics
// accounting described by the engine's call-execution design.
func (c *Client) Call(ctx context.Context, methodName string, request, response any, opts ...CallOption) error {
	callOpts := types.ApplyCallOptions(opts...)
	return c.orch.Call(ctx, methodName, request, response, callOpts)
}

// GetHealth returns a point-in-time health report.
func (c *Client) GetHealth() HealthReport {
	lastErrorAt, lastError := c.connmgr.LastError()
	state := c.connmgr.State()

	return HealthReport{
		State:             state,
		Healthy:           state == types.StateConnected,
		LatencyMs:         c.tracker.LastLatencyMs(),
		LastConnectedAt:   c.connmgr.LastConnectedAt(),
		LastErrorAt:       lastErrorAt,
		LastError:         lastError,
		ReconnectAttempts: c.connmgr.ReconnectAttempts(),
		Metrics:           *c.tracker.GetMetrics(),
	}
}

// GetMetrics returns the accumulated metrics snapshot.
func (c *Client) GetMetrics() MetricsSnapshot {
	return *c.tracker.GetMetrics()
}

// ResetMetrics zeroes every metrics counter and starts a fresh window.
func (c *Client) ResetMetrics() {
	c.tracker.Reset()
}

// ClearCache drops every entry from the fallback cache. A no-op if the
// cache is disabled.
func (c *Client) ClearCache() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Subscribe registers fn to be called for every event named name (one of
// the Event* constants). The returned function unsubscribes it.
func (c *Client) Subscribe(name string, fn EventHandler) func() {
	return c.events.subscribe(name, fn)
}

// Close shuts the client down: stops background publishing, detaches event
// subscribers, and closes the underlying connection.
func (c *Client) Close() error {
	c.logger.Info("grpcresilient: closing client", "service", c.serviceName)
	if c.background != nil {
		c.background.Stop()
	}
	if c.publisher != nil {
		_ = c.publisher.Close()
	}
	c.events.close()
	return c.connmgr.Close()
}
