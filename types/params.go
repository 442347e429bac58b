package types

import "fmt"

// StaticConfigParams holds the maintenance parameters fixed at startup.
// The confidence threshold, replication factor and query timeout are only
// reported, never enforced.
type StaticConfigParams struct {
	BlockConfidenceThreshold float64
	ReplicationFactor        uint16
	QueryTimeout             uint32 // seconds
	PruningInterval          uint32 // blocks
	TelemetryFlushInterval   uint32 // blocks

	// PruningEnabled is false when the record store expires entries itself.
	PruningEnabled bool
}

func (p StaticConfigParams) Validate() error {
	if p.BlockConfidenceThreshold < 0 || p.BlockConfidenceThreshold > 1 {
		return NewInvalidValueError("BLOCK_CONFIDENCE_THRESHOLD", fmt.Sprintf("%v", p.BlockConfidenceThreshold), "must be between 0 and 1")
	}
	if p.ReplicationFactor == 0 {
		return NewValidationError("REPLICATION_FACTOR", "must be positive")
	}
	if p.QueryTimeout == 0 {
		return NewValidationError("QUERY_TIMEOUT", "must be positive")
	}
	if p.PruningInterval == 0 {
		return NewValidationError("PRUNING_INTERVAL", "must be at least 1")
	}
	if p.TelemetryFlushInterval == 0 {
		return NewValidationError("TELEMETRY_FLUSH_INTERVAL", "must be at least 1")
	}
	return nil
}
