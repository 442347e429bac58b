package p2p

import (
	"context"
	"errors"
	"time"

	"github.com/initia-labs/lightnode/config"
	"github.com/initia-labs/lightnode/types"
)

var ErrRecordNotFound = errors.New("record not found")

// RecordStore holds DHT records.
type RecordStore interface {
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Len(ctx context.Context) (int, error)
	Close() error
}

// Pruner is implemented by stores that keep expired records until told to
// drop them.
type Pruner interface {
	PruneExpired(ctx context.Context, now time.Time) (int, error)
}

// OpenStore opens the record store backend selected in the config.
func OpenStore(cfg *config.P2PConfig) (RecordStore, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		return NewMemoryStore(cfg.MaxRecords), nil
	case config.StoreBackendBadger:
		return OpenBadgerStore(cfg.StorePath)
	default:
		return nil, types.NewInvalidValueError("P2P_STORE_BACKEND", cfg.StoreBackend, "unknown store backend")
	}
}
