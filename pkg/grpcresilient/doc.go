// Package grpcresilient is a resilience engine for unary gRPC-style RPC
// clients with minimal dependencies.
//
// grpcresilient wraps a single remote service behind a connection lifecycle
// (automatic reconnect with capped exponential backoff), a call orchestrator
// (retry with a fallback to stale cached responses), and a metrics
// accumulator, so callers get a resilient client without hand-rolling any of
// that plumbing themselves.
//
// # Features
//
//   - Connection Lifecycle: automatic reconnect, a monitor loop over the
//     transport's connectivity state, and a concurrency-safe EnsureConnected
//   - Call Execution: a mandatory retry loop for retryable wire errors, with
//     an optional circuit breaker/bulkhead gate in front of it
//   - Fallback Cache: a bounded LRU+TTL cache that serves the last-known-good
//     response while the remote service is unavailable
//   - Observability: accumulated metrics with pluggable publishers (DataDog,
//     logging, or none), plus an event bus for lifecycle notifications
//   - Minimal Dependencies: only grpc, golang.org/x/sync, and (optionally)
//     datadog-go are required
//
// # Quick Start
//
// Create a client pointed at a service with default configuration:
//
//	client, err := grpcresilient.New("users-service", "users.internal:443")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
// # Call Execution
//
// Invoke a unary method and decode the response:
//
//	ctx := context.Background()
//	var resp GetUserResponse
//	err := client.Call(ctx, "GetUser", &GetUserRequest{ID: "123"}, &resp)
//
// Per-call options override the client-wide defaults:
//
//	err := client.Call(ctx, "GetUser", req, &resp,
//	    grpcresilient.WithTimeout(2*time.Second),
//	    grpcresilient.WithSkipCache(),
//	)
//
// # Configuration
//
// Load configuration from a JSON file, with environment variable overrides
// applied on top:
//
//	client, err := grpcresilient.NewFromFile("config.json")
//
// Or configure explicitly:
//
//	cfg := config.DefaultConfig()
//	cfg.Identity.ServiceName = "users-service"
//	cfg.Identity.GRPCURL = "users.internal:443"
//	cfg.CircuitBreaker.Enabled = true
//	client, err := grpcresilient.NewFromConfig(cfg)
//
// # Observability
//
// Subscribe to lifecycle events:
//
//	unsubscribe := client.Subscribe(grpcresilient.EventCircuitBreakerTrip, func(ev grpcresilient.Event) {
//	    log.Printf("circuit breaker tripped: %v", ev.Err)
//	})
//	defer unsubscribe()
//
// Read accumulated metrics at any time:
//
//	snapshot := client.GetMetrics()
//	fmt.Printf("success rate: %d/%d\n", snapshot.SuccessfulCalls, snapshot.TotalCalls)
//
// # Health Checks
//
// Check the connection's current health:
//
//	health := client.GetHealth()
//	if !health.Healthy {
//	    log.Printf("unhealthy: state=%s lastError=%s", health.State, health.LastError)
//	}
//
// # Thread Safety
//
// A Client is safe for concurrent use from multiple goroutines.
package grpcresilient
