package grpcresilient

import (
	"log/slog"

	"github.com/berkeerdo/grpc-resilient/internal/config"
	"github.com/berkeerdo/grpc-resilient/internal/metrics"
	"github.com/berkeerdo/grpc-resilient/internal/metrics/datadog"
)

// newMetricsPublisher builds the Publisher a Client's BackgroundPublisher
// reports snapshots to: DataDog when configured, otherwise a plain
// log/slog publisher.
func newMetricsPublisher(cfg *config.Config, _ Logger) (metrics.Publisher, error) {
	if cfg.Metrics.DataDog.Enabled {
		return datadog.NewPublisher(&cfg.Metrics.DataDog, slog.Default())
	}
	return metrics.NewLoggingPublisher(slog.Default(), "service:"+cfg.Identity.ServiceName), nil
}
