// Package maintenance runs the per-block housekeeping of the light node:
// record pruning, telemetry flushing and routing map upkeep.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/initia-labs/lightnode/types"
)

type Maintenance struct {
	p2p       P2PClient
	telemetry Telemetry
	params    types.StaticConfigParams
	logger    *slog.Logger

	prune func(ctx context.Context, blockNumber uint32)
}

func New(p2p P2PClient, telemetry Telemetry, params types.StaticConfigParams, logger *slog.Logger) (*Maintenance, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	m := &Maintenance{
		p2p:       p2p,
		telemetry: telemetry,
		params:    params,
		logger:    logger.With("module", "maintenance"),
	}
	if params.PruningEnabled {
		m.prune = m.pruneRecords
	} else {
		m.prune = func(context.Context, uint32) {}
	}

	return m, nil
}

// ProcessBlock runs one maintenance round. Pruning and telemetry flushing
// only log their failures; any routing map failure aborts the round and is
// returned.
func (m *Maintenance) ProcessBlock(ctx context.Context, blockNumber uint32) error {
	m.prune(ctx, blockNumber)
	m.flushTelemetry(ctx, blockNumber)

	if err := m.p2p.ShrinkRoutingMap(ctx); err != nil {
		return fmt.Errorf("unable to perform routing-map shrink: %w", err)
	}

	mapSize, err := m.p2p.RoutingMapSize(ctx)
	if err != nil {
		return fmt.Errorf("unable to get routing-map size: %w", err)
	}

	peers, publicPeers, err := m.p2p.CountDHTEntries(ctx)
	if err != nil {
		return err
	}
	m.logger.Info("routing table peers",
		slog.Int("peers", peers),
		slog.Int("public_peers", publicPeers))

	connected, err := m.p2p.ListConnectedPeers(ctx)
	if err != nil {
		return err
	}
	m.logger.Debug("connected peers", slog.Any("peers", connected))

	m.telemetry.Record(ctx, types.DHTConnectedPeers(peers))
	m.telemetry.Record(ctx, types.BlockConfidenceThreshold(m.params.BlockConfidenceThreshold))
	m.telemetry.Record(ctx, types.DHTReplicationFactor(m.params.ReplicationFactor))
	m.telemetry.Record(ctx, types.DHTQueryTimeout(m.params.QueryTimeout))
	m.telemetry.Record(ctx, types.Up())

	m.logger.Info("maintenance completed",
		slog.Uint64("block_number", uint64(blockNumber)),
		slog.Int("map_size", mapSize))
	return nil
}

func (m *Maintenance) pruneRecords(ctx context.Context, blockNumber uint32) {
	if !IsDue(blockNumber, m.params.PruningInterval) {
		return
	}

	logger := m.logger.With(slog.Uint64("block_number", uint64(blockNumber)))
	logger.Info("pruning expired records")
	pruned, err := m.p2p.PruneExpiredRecords(ctx)
	if err != nil {
		logger.Error("pruning failed", slog.Any("error", err))
		return
	}
	logger.Info("pruning finished", slog.Int("pruned", pruned))
}

func (m *Maintenance) flushTelemetry(ctx context.Context, blockNumber uint32) {
	if !IsDue(blockNumber, m.params.TelemetryFlushInterval) {
		return
	}

	logger := m.logger.With(slog.Uint64("block_number", uint64(blockNumber)))
	logger.Info("flushing metrics")
	if err := m.telemetry.Flush(ctx); err != nil {
		logger.Error("flushing metrics failed", slog.Any("error", err))
		return
	}
	logger.Info("flushing metrics finished")
}
