package config

import (
	"fmt"
	"time"

	"github.com/initia-labs/lightnode/types"
)

const (
	StoreBackendMemory = "memory"
	StoreBackendBadger = "badger"
)

type P2PConfig struct {
	MaxPeers       int
	MaxRecords     int
	PeerTTL        time.Duration
	RecordTTL      time.Duration
	StoreBackend   string
	StorePath      string
	BootstrapPeers []string
}

// SelfExpiringStore reports whether the record store drops expired records on
// its own, in which case explicit pruning is disabled.
func (c P2PConfig) SelfExpiringStore() bool {
	return c.StoreBackend == StoreBackendBadger
}

func (c P2PConfig) Validate() error {
	if c.MaxPeers < 1 {
		return types.NewValidationError("P2P_MAX_PEERS", "must be at least 1")
	}
	if c.MaxRecords < 1 {
		return types.NewValidationError("P2P_MAX_RECORDS", "must be at least 1")
	}
	if c.PeerTTL <= 0 {
		return types.NewValidationError("P2P_PEER_TTL", "must be positive")
	}
	if c.RecordTTL <= 0 {
		return types.NewValidationError("P2P_RECORD_TTL", "must be positive")
	}

	switch c.StoreBackend {
	case StoreBackendMemory:
	case StoreBackendBadger:
		if c.StorePath == "" {
			return types.NewValidationError("P2P_STORE_PATH", "is required for the badger store")
		}
	default:
		return types.NewValidationError("P2P_STORE_BACKEND", fmt.Sprintf("invalid value '%s', must be 'memory' or 'badger'", c.StoreBackend))
	}

	return nil
}
