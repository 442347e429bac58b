package maintenance

import (
	"context"

	"github.com/initia-labs/lightnode/types"
)

// P2PClient is the slice of the DHT client the maintenance round needs.
type P2PClient interface {
	PruneExpiredRecords(ctx context.Context) (int, error)
	ShrinkRoutingMap(ctx context.Context) error
	RoutingMapSize(ctx context.Context) (int, error)
	CountDHTEntries(ctx context.Context) (total int, public int, err error)
	ListConnectedPeers(ctx context.Context) ([]string, error)
}

type Telemetry interface {
	Record(ctx context.Context, value types.MetricValue)
	Flush(ctx context.Context) error
}

type ShutdownController interface {
	TriggerShutdown(reason string) error
}

type BlockReceiver interface {
	Recv(ctx context.Context) (types.BlockVerified, error)
}
