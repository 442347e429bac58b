package config

import "github.com/initia-labs/lightnode/types"

type MaintenanceConfig struct {
	BlockConfidenceThreshold float64
	ReplicationFactor        uint16
	QueryTimeout             uint32
	PruningInterval          uint32
	TelemetryFlushInterval   uint32
	EventChannelCapacity     int
}

func (c MaintenanceConfig) Validate() error {
	if c.EventChannelCapacity < 1 {
		return types.NewValidationError("EVENT_CHANNEL_CAPACITY", "must be at least 1")
	}
	// pruning flag does not affect validation
	return c.params(true).Validate()
}

func (c MaintenanceConfig) params(pruningEnabled bool) types.StaticConfigParams {
	return types.StaticConfigParams{
		BlockConfidenceThreshold: c.BlockConfidenceThreshold,
		ReplicationFactor:        c.ReplicationFactor,
		QueryTimeout:             c.QueryTimeout,
		PruningInterval:          c.PruningInterval,
		TelemetryFlushInterval:   c.TelemetryFlushInterval,
		PruningEnabled:           pruningEnabled,
	}
}
