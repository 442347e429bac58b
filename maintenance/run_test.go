package maintenance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/initia-labs/lightnode/event"
	"github.com/initia-labs/lightnode/shutdown"
	"github.com/initia-labs/lightnode/types"
)

func TestRunStopsWhenSourceCloses(t *testing.T) {
	p2p := healthyP2P(5)
	tel := healthyTelemetry()
	m := newTestMaintenance(t, p2p, tel, testParams(), discardLogger())

	b := event.NewBroadcaster(8)
	rx := b.Subscribe()
	for _, n := range []uint32{1, 2, 3} {
		_, err := b.Send(types.BlockVerified{BlockNum: n})
		require.NoError(t, err)
	}
	b.Close()

	ctrl := new(MockShutdownController)
	ctrl.On("TriggerShutdown", "channel closed").Return(nil).Once()

	err := m.Run(context.Background(), rx, ctrl)

	assert.ErrorIs(t, err, event.ErrClosed)
	ctrl.AssertExpectations(t)
	p2p.AssertNumberOfCalls(t, "ShrinkRoutingMap", 3)
}

func TestRunStopsWhenReceiverLags(t *testing.T) {
	p2p := new(MockP2PClient)
	tel := new(MockTelemetry)
	m := newTestMaintenance(t, p2p, tel, testParams(), discardLogger())

	b := event.NewBroadcaster(2)
	rx := b.Subscribe()
	for _, n := range []uint32{1, 2, 3, 4, 5} {
		_, err := b.Send(types.BlockVerified{BlockNum: n})
		require.NoError(t, err)
	}

	ctrl := new(MockShutdownController)
	ctrl.On("TriggerShutdown", "channel lagged by 3").Return(nil).Once()

	err := m.Run(context.Background(), rx, ctrl)

	var lagged *event.LaggedError
	require.ErrorAs(t, err, &lagged)
	assert.Equal(t, uint64(3), lagged.Skipped)
	ctrl.AssertExpectations(t)
	p2p.AssertNotCalled(t, "ShrinkRoutingMap", mock.Anything)
	tel.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestRunStopsOnFatalRound(t *testing.T) {
	p2p := new(MockP2PClient)
	p2p.On("PruneExpiredRecords", mock.Anything).Return(0, nil)
	p2p.On("ShrinkRoutingMap", mock.Anything).Return(errors.New("disk full"))
	m := newTestMaintenance(t, p2p, healthyTelemetry(), testParams(), discardLogger())

	rx := &scriptedReceiver{blocks: []uint32{5, 6, 7}}
	ctrl := new(MockShutdownController)
	ctrl.On("TriggerShutdown", "unable to perform routing-map shrink: disk full").Return(nil).Once()

	err := m.Run(context.Background(), rx, ctrl)

	require.Error(t, err)
	assert.Equal(t, 1, rx.calls, "no further blocks are consumed after a fatal round")
	ctrl.AssertExpectations(t)
}

func TestRunIgnoresAlreadyTriggeredShutdown(t *testing.T) {
	m := newTestMaintenance(t, healthyP2P(1), healthyTelemetry(), testParams(), discardLogger())

	ctrl := shutdown.New()
	require.NoError(t, ctrl.TriggerShutdown("signal received"))

	rx := &scriptedReceiver{err: event.ErrClosed}
	err := m.Run(context.Background(), rx, ctrl)

	assert.ErrorIs(t, err, event.ErrClosed)
	reason, ok := ctrl.Reason()
	assert.True(t, ok)
	assert.Equal(t, "signal received", reason)
}

func TestRunTriggersRealController(t *testing.T) {
	m := newTestMaintenance(t, healthyP2P(1), healthyTelemetry(), testParams(), discardLogger())

	ctrl := shutdown.New()
	rx := &scriptedReceiver{blocks: []uint32{1, 2}, err: event.ErrClosed}

	err := m.Run(context.Background(), rx, ctrl)
	require.Error(t, err)

	select {
	case <-ctrl.Done():
	default:
		t.Fatal("shutdown was not triggered")
	}
	reason, _ := ctrl.Reason()
	assert.Equal(t, "channel closed", reason)
}

func TestRunCanceledContextDoesNotTriggerShutdown(t *testing.T) {
	m := newTestMaintenance(t, healthyP2P(1), healthyTelemetry(), testParams(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := event.NewBroadcaster(4)
	ctrl := new(MockShutdownController)

	err := m.Run(ctx, b.Subscribe(), ctrl)

	assert.NoError(t, err)
	ctrl.AssertNotCalled(t, "TriggerShutdown", mock.Anything)
}
