package metrics

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/initia-labs/lightnode/config"
	"github.com/initia-labs/lightnode/types"
)

// Telemetry is the sink the maintenance loop reports into. Recorded values
// land in the prometheus registry; Flush pushes the registry to a
// Pushgateway when one is configured.
type Telemetry struct {
	group  *LightClientMetrics
	pusher *push.Pusher
	logger *slog.Logger
}

// NewTelemetry creates a sink backed by the global registry.
func NewTelemetry(cfg *config.Config, logger *slog.Logger) *Telemetry {
	Init()
	return newTelemetry(metrics.LightClient, registry, cfg.GetMetricsConfig(), logger)
}

func newTelemetry(group *LightClientMetrics, gatherer prometheus.Gatherer, cfg *config.MetricsConfig, logger *slog.Logger) *Telemetry {
	t := &Telemetry{
		group:  group,
		logger: logger.With("component", "telemetry"),
	}
	if cfg != nil && cfg.PushUrl != "" {
		t.pusher = push.New(cfg.PushUrl, cfg.PushJob).Gatherer(gatherer)
	}
	return t
}

// Record never fails; unknown kinds are logged and dropped.
func (t *Telemetry) Record(_ context.Context, value types.MetricValue) {
	switch value.Kind {
	case types.MetricDHTConnectedPeers:
		t.group.DHTConnectedPeers.Set(value.Value)
	case types.MetricBlockConfidenceThreshold:
		t.group.BlockConfidenceThreshold.Set(value.Value)
	case types.MetricDHTReplicationFactor:
		t.group.DHTReplicationFactor.Set(value.Value)
	case types.MetricDHTQueryTimeout:
		t.group.DHTQueryTimeout.Set(value.Value)
	case types.MetricUp:
		t.group.Up.Set(value.Value)
	default:
		t.logger.Warn("unknown metric kind", slog.String("kind", string(value.Kind)))
	}
}

func (t *Telemetry) Flush(ctx context.Context) error {
	if t.pusher == nil {
		t.group.FlushesTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	if err := t.pusher.PushContext(ctx); err != nil {
		t.group.FlushesTotal.WithLabelValues("failure").Inc()
		if errors.Is(err, context.DeadlineExceeded) {
			return types.NewTimeoutError("pushgateway flush")
		}
		return types.NewNetworkError("pushgateway", err)
	}

	t.group.FlushesTotal.WithLabelValues("success").Inc()
	return nil
}
