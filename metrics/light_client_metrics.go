package metrics

import "github.com/prometheus/client_golang/prometheus"

// LightClientMetrics groups the values reported by the maintenance loop
type LightClientMetrics struct {
	// DHT health
	DHTConnectedPeers    prometheus.Gauge
	DHTReplicationFactor prometheus.Gauge
	DHTQueryTimeout      prometheus.Gauge

	// Static light client parameters
	BlockConfidenceThreshold prometheus.Gauge

	// Liveness
	Up prometheus.Gauge

	// Pushgateway flushes by result
	FlushesTotal *prometheus.CounterVec
}

// NewLightClientMetrics creates and returns light client metrics
func NewLightClientMetrics() *LightClientMetrics {
	return &LightClientMetrics{
		DHTConnectedPeers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lightnode_dht_connected_peers",
				Help: "Number of peers in the DHT routing table",
			},
		),
		DHTReplicationFactor: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lightnode_dht_replication_factor",
				Help: "Configured DHT record replication factor",
			},
		),
		DHTQueryTimeout: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lightnode_dht_query_timeout_seconds",
				Help: "Configured DHT query timeout",
			},
		),
		BlockConfidenceThreshold: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lightnode_block_confidence_threshold",
				Help: "Confidence required to treat a block as available",
			},
		),
		Up: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lightnode_up",
				Help: "Set to 1 after every completed maintenance round",
			},
		),
		FlushesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lightnode_telemetry_flushes_total",
				Help: "Total number of telemetry flushes",
			},
			[]string{"result"}, // "success", "failure", "skipped"
		),
	}
}

// Register registers all light client metrics with the given registry
func (l *LightClientMetrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(
		l.DHTConnectedPeers,
		l.DHTReplicationFactor,
		l.DHTQueryTimeout,
		l.BlockConfidenceThreshold,
		l.Up,
		l.FlushesTotal,
	)
}
