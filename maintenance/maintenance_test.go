package maintenance

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/initia-labs/lightnode/types"
)

func testParams() types.StaticConfigParams {
	return types.StaticConfigParams{
		BlockConfidenceThreshold: 0.92,
		ReplicationFactor:        5,
		QueryTimeout:             10,
		PruningInterval:          10,
		TelemetryFlushInterval:   5,
		PruningEnabled:           true,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// healthyP2P answers every call successfully.
func healthyP2P(mapSize int) *MockP2PClient {
	p2p := new(MockP2PClient)
	p2p.On("PruneExpiredRecords", mock.Anything).Return(3, nil)
	p2p.On("ShrinkRoutingMap", mock.Anything).Return(nil)
	p2p.On("RoutingMapSize", mock.Anything).Return(mapSize, nil)
	p2p.On("CountDHTEntries", mock.Anything).Return(12, 4, nil)
	p2p.On("ListConnectedPeers", mock.Anything).Return([]string{"peer-a", "peer-b"}, nil)
	return p2p
}

func healthyTelemetry() *MockTelemetry {
	tel := new(MockTelemetry)
	tel.On("Record", mock.Anything, mock.Anything).Return()
	tel.On("Flush", mock.Anything).Return(nil)
	return tel
}

func newTestMaintenance(t *testing.T, p2p P2PClient, tel Telemetry, params types.StaticConfigParams, logger *slog.Logger) *Maintenance {
	t.Helper()
	m, err := New(p2p, tel, params, logger)
	require.NoError(t, err)
	return m
}

func recordedValues(tel *MockTelemetry) []types.MetricValue {
	var values []types.MetricValue
	for _, call := range tel.Calls {
		if call.Method == "Record" {
			values = append(values, call.Arguments.Get(1).(types.MetricValue))
		}
	}
	return values
}

func TestIsDue(t *testing.T) {
	tests := []struct {
		block    uint32
		interval uint32
		due      bool
	}{
		{block: 20, interval: 10, due: true},
		{block: 20, interval: 5, due: true},
		{block: 15, interval: 10, due: false},
		{block: 15, interval: 5, due: true},
		{block: 7, interval: 10, due: false},
		{block: 7, interval: 5, due: false},
		{block: 0, interval: 360, due: true},
		{block: 13, interval: 1, due: true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.due, IsDue(tt.block, tt.interval), "block %d interval %d", tt.block, tt.interval)
	}
}

func TestProcessBlockGates(t *testing.T) {
	tests := []struct {
		block   uint32
		prunes  int
		flushes int
	}{
		{block: 20, prunes: 1, flushes: 1},
		{block: 15, prunes: 0, flushes: 1},
		{block: 7, prunes: 0, flushes: 0},
	}

	for _, tt := range tests {
		p2p := healthyP2P(1)
		tel := healthyTelemetry()
		m := newTestMaintenance(t, p2p, tel, testParams(), discardLogger())

		require.NoError(t, m.ProcessBlock(context.Background(), tt.block))

		p2p.AssertNumberOfCalls(t, "PruneExpiredRecords", tt.prunes)
		tel.AssertNumberOfCalls(t, "Flush", tt.flushes)
		p2p.AssertNumberOfCalls(t, "ShrinkRoutingMap", 1)
		p2p.AssertNumberOfCalls(t, "RoutingMapSize", 1)
		p2p.AssertNumberOfCalls(t, "CountDHTEntries", 1)
		p2p.AssertNumberOfCalls(t, "ListConnectedPeers", 1)
	}
}

func TestProcessBlockRecordsTelemetryInOrder(t *testing.T) {
	p2p := healthyP2P(1)
	tel := healthyTelemetry()
	m := newTestMaintenance(t, p2p, tel, testParams(), discardLogger())

	require.NoError(t, m.ProcessBlock(context.Background(), 7))

	assert.Equal(t, []types.MetricValue{
		types.DHTConnectedPeers(12),
		types.BlockConfidenceThreshold(0.92),
		types.DHTReplicationFactor(5),
		types.DHTQueryTimeout(10),
		types.Up(),
	}, recordedValues(tel))

	// static values are re-reported on every round
	require.NoError(t, m.ProcessBlock(context.Background(), 8))
	assert.Len(t, recordedValues(tel), 10)
}

func TestProcessBlockLogsCompletion(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m := newTestMaintenance(t, healthyP2P(42), healthyTelemetry(), testParams(), logger)
	require.NoError(t, m.ProcessBlock(context.Background(), 100))

	out := buf.String()
	assert.Contains(t, out, `"msg":"maintenance completed"`)
	assert.Contains(t, out, `"block_number":100`)
	assert.Contains(t, out, `"map_size":42`)
	assert.Contains(t, out, `"public_peers":4`)
	assert.Contains(t, out, `"msg":"connected peers"`)
}

func TestProcessBlockShrinkFailure(t *testing.T) {
	diskFull := errors.New("disk full")

	p2p := new(MockP2PClient)
	p2p.On("PruneExpiredRecords", mock.Anything).Return(0, nil)
	p2p.On("ShrinkRoutingMap", mock.Anything).Return(diskFull)
	tel := healthyTelemetry()

	m := newTestMaintenance(t, p2p, tel, testParams(), discardLogger())
	err := m.ProcessBlock(context.Background(), 20)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to perform routing-map shrink")
	assert.Contains(t, err.Error(), "disk full")
	assert.ErrorIs(t, err, diskFull)

	// soft actions ran before the failure
	p2p.AssertNumberOfCalls(t, "PruneExpiredRecords", 1)
	tel.AssertNumberOfCalls(t, "Flush", 1)

	p2p.AssertNotCalled(t, "RoutingMapSize", mock.Anything)
	p2p.AssertNotCalled(t, "CountDHTEntries", mock.Anything)
	p2p.AssertNotCalled(t, "ListConnectedPeers", mock.Anything)
	tel.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestProcessBlockSizeFailure(t *testing.T) {
	sizeErr := errors.New("routing table locked")

	p2p := new(MockP2PClient)
	p2p.On("ShrinkRoutingMap", mock.Anything).Return(nil)
	p2p.On("RoutingMapSize", mock.Anything).Return(0, sizeErr)
	tel := healthyTelemetry()

	m := newTestMaintenance(t, p2p, tel, testParams(), discardLogger())
	err := m.ProcessBlock(context.Background(), 7)

	require.Error(t, err)
	assert.Equal(t, "unable to get routing-map size: routing table locked", err.Error())
	p2p.AssertNotCalled(t, "CountDHTEntries", mock.Anything)
	tel.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestProcessBlockCountAndListFailuresPropagate(t *testing.T) {
	countErr := errors.New("dht unavailable")
	listErr := errors.New("swarm stopped")

	t.Run("count", func(t *testing.T) {
		p2p := new(MockP2PClient)
		p2p.On("ShrinkRoutingMap", mock.Anything).Return(nil)
		p2p.On("RoutingMapSize", mock.Anything).Return(3, nil)
		p2p.On("CountDHTEntries", mock.Anything).Return(0, 0, countErr)
		tel := healthyTelemetry()

		m := newTestMaintenance(t, p2p, tel, testParams(), discardLogger())
		err := m.ProcessBlock(context.Background(), 7)

		assert.Equal(t, countErr, err)
		p2p.AssertNotCalled(t, "ListConnectedPeers", mock.Anything)
		tel.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("list", func(t *testing.T) {
		p2p := new(MockP2PClient)
		p2p.On("ShrinkRoutingMap", mock.Anything).Return(nil)
		p2p.On("RoutingMapSize", mock.Anything).Return(3, nil)
		p2p.On("CountDHTEntries", mock.Anything).Return(3, 1, nil)
		p2p.On("ListConnectedPeers", mock.Anything).Return(nil, listErr)
		tel := healthyTelemetry()

		m := newTestMaintenance(t, p2p, tel, testParams(), discardLogger())
		err := m.ProcessBlock(context.Background(), 7)

		assert.Equal(t, listErr, err)
		tel.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})
}

func TestProcessBlockSoftFailuresContinue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	p2p := new(MockP2PClient)
	p2p.On("PruneExpiredRecords", mock.Anything).Return(0, errors.New("store busy"))
	p2p.On("ShrinkRoutingMap", mock.Anything).Return(nil)
	p2p.On("RoutingMapSize", mock.Anything).Return(9, nil)
	p2p.On("CountDHTEntries", mock.Anything).Return(9, 2, nil)
	p2p.On("ListConnectedPeers", mock.Anything).Return([]string{}, nil)

	tel := new(MockTelemetry)
	tel.On("Record", mock.Anything, mock.Anything).Return()
	tel.On("Flush", mock.Anything).Return(errors.New("gateway unreachable"))

	m := newTestMaintenance(t, p2p, tel, testParams(), logger)
	require.NoError(t, m.ProcessBlock(context.Background(), 20))

	assert.Len(t, recordedValues(tel), 5)
	assert.Contains(t, buf.String(), "pruning failed")
	assert.Contains(t, buf.String(), "store busy")
	assert.Contains(t, buf.String(), "flushing metrics failed")
	assert.Contains(t, buf.String(), "gateway unreachable")
}

func TestProcessBlockPruningDisabled(t *testing.T) {
	params := testParams()
	params.PruningEnabled = false
	params.PruningInterval = 1

	p2p := healthyP2P(1)
	m := newTestMaintenance(t, p2p, healthyTelemetry(), params, discardLogger())

	for _, block := range []uint32{0, 10, 20, 21} {
		require.NoError(t, m.ProcessBlock(context.Background(), block))
	}
	p2p.AssertNotCalled(t, "PruneExpiredRecords", mock.Anything)
}

func TestNewRejectsInvalidParams(t *testing.T) {
	params := testParams()
	params.TelemetryFlushInterval = 0

	_, err := New(new(MockP2PClient), new(MockTelemetry), params, discardLogger())
	require.Error(t, err)

	var stdErr *types.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, types.ErrTypeValidation, stdErr.Type)
}
