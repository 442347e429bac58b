package maintenance

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/initia-labs/lightnode/types"
)

type MockP2PClient struct {
	mock.Mock
}

func (m *MockP2PClient) PruneExpiredRecords(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockP2PClient) ShrinkRoutingMap(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockP2PClient) RoutingMapSize(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockP2PClient) CountDHTEntries(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockP2PClient) ListConnectedPeers(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockTelemetry struct {
	mock.Mock
}

func (m *MockTelemetry) Record(ctx context.Context, value types.MetricValue) {
	m.Called(ctx, value)
}

func (m *MockTelemetry) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockShutdownController struct {
	mock.Mock
}

func (m *MockShutdownController) TriggerShutdown(reason string) error {
	args := m.Called(reason)
	return args.Error(0)
}

// scriptedReceiver hands out the given blocks and then returns err forever.
type scriptedReceiver struct {
	blocks []uint32
	err    error
	calls  int
}

func (r *scriptedReceiver) Recv(ctx context.Context) (types.BlockVerified, error) {
	r.calls++
	if len(r.blocks) == 0 {
		return types.BlockVerified{}, r.err
	}
	next := r.blocks[0]
	r.blocks = r.blocks[1:]
	return types.BlockVerified{BlockNum: next}, nil
}
