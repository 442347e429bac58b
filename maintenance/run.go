package maintenance

import (
	"context"
	"errors"
	"log/slog"

	"github.com/initia-labs/lightnode/shutdown"
)

// Run processes one round per received block until the receiver fails or a
// round fails. Either way it triggers shutdown once with the error text and
// returns the error. Cancellation of ctx is the one exit that does not
// trigger shutdown: the caller canceling the loop is already shutting the
// node down, so Run returns nil.
func (m *Maintenance) Run(ctx context.Context, blocks BlockReceiver, ctrl ShutdownController) error {
	m.logger.Info("starting maintenance")

	for {
		block, err := blocks.Recv(ctx)
		if err == nil {
			err = m.ProcessBlock(ctx, block.BlockNum)
		}
		if err == nil {
			continue
		}

		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			m.logger.Info("maintenance stopped", slog.Any("reason", err))
			return nil
		}

		m.logger.Error("maintenance failed", slog.Any("error", err))
		if triggerErr := ctrl.TriggerShutdown(err.Error()); triggerErr != nil {
			if errors.Is(triggerErr, shutdown.ErrAlreadyTriggered) {
				m.logger.Debug("shutdown already triggered", slog.Any("error", triggerErr))
			} else {
				m.logger.Error("failed to trigger shutdown", slog.Any("error", triggerErr))
			}
		}
		return err
	}
}
