package types

// MetricKind names a telemetry value reported by the light client.
type MetricKind string

const (
	MetricDHTConnectedPeers        MetricKind = "dht_connected_peers"
	MetricBlockConfidenceThreshold MetricKind = "block_confidence_threshold"
	MetricDHTReplicationFactor     MetricKind = "dht_replication_factor"
	MetricDHTQueryTimeout          MetricKind = "dht_query_timeout"
	MetricUp                       MetricKind = "up"
)

// MetricValue is a single named sample handed to the telemetry sink.
type MetricValue struct {
	Kind  MetricKind
	Value float64
}

func DHTConnectedPeers(n int) MetricValue {
	return MetricValue{Kind: MetricDHTConnectedPeers, Value: float64(n)}
}

func BlockConfidenceThreshold(threshold float64) MetricValue {
	return MetricValue{Kind: MetricBlockConfidenceThreshold, Value: threshold}
}

func DHTReplicationFactor(n uint16) MetricValue {
	return MetricValue{Kind: MetricDHTReplicationFactor, Value: float64(n)}
}

func DHTQueryTimeout(seconds uint32) MetricValue {
	return MetricValue{Kind: MetricDHTQueryTimeout, Value: float64(seconds)}
}

func Up() MetricValue {
	return MetricValue{Kind: MetricUp, Value: 1}
}
