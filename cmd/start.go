package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/initia-labs/lightnode/api"
	"github.com/initia-labs/lightnode/config"
	"github.com/initia-labs/lightnode/event"
	"github.com/initia-labs/lightnode/log"
	"github.com/initia-labs/lightnode/maintenance"
	"github.com/initia-labs/lightnode/metrics"
	"github.com/initia-labs/lightnode/p2p"
	"github.com/initia-labs/lightnode/scraper"
	"github.com/initia-labs/lightnode/sentry_integration"
	"github.com/initia-labs/lightnode/shutdown"
)

const (
	signalReasonPrefix = "received signal"
	stopTimeout        = 5 * time.Second
)

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the light node",
		Long: `
Run the light node.

Follows the chain head over RPC and runs routing map and record store
maintenance on every verified block. Serves a status API and prometheus metrics.

All options are configured via environment variables or a .env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}

			logger := log.NewLogger(cfg)
			return run(cmd.Context(), cfg, logger)
		},
	}

	return cmd
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	metrics.Init()

	if err := sentry_integration.Init(cfg.GetSentryConfig(), config.Version); err != nil {
		return err
	}

	client, err := p2p.New(cfg.GetP2PConfig(), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close p2p client", slog.Any("error", err))
		}
	}()

	maint, err := maintenance.New(client, metrics.NewTelemetry(cfg, logger), cfg.GetStaticConfigParams(), logger)
	if err != nil {
		return err
	}

	blocks := event.NewBroadcaster(cfg.GetEventChannelCapacity())
	receiver := blocks.Subscribe()

	ctrl := shutdown.New()
	ctrl.OnShutdown(func(reason string) {
		logger.Info("shutting down", slog.String("reason", reason))
		blocks.Close()
	})
	if cfg.GetSentryConfig() != nil {
		report := sentry_integration.ShutdownHook(sentry.CurrentHub())
		ctrl.OnShutdown(func(reason string) {
			if !strings.HasPrefix(reason, signalReasonPrefix) {
				report(reason)
			}
		})
	}

	go watchSignals(ctrl)

	metricsServer := metrics.NewServer(cfg, logger)
	apiServer := api.New(cfg, logger, client, ctrl)
	// half the ring stays free for events the receiver has not read yet
	blockScraper := scraper.New(cfg.GetChainConfig(), blocks, cfg.GetEventChannelCapacity()/2, ctrl, logger)

	g, gctx := errgroup.WithContext(ctrl.Context())
	supervise := func(name string, fn func() error) {
		g.Go(func() error {
			defer metrics.RecoverFromPanic(name)
			err := fn()
			if err != nil {
				_ = ctrl.TriggerShutdown(fmt.Sprintf("%s: %s", name, err))
			}
			return err
		})
	}

	supervise("metrics", metricsServer.Start)
	supervise("api", apiServer.Start)
	supervise("scraper", func() error { return blockScraper.Run(gctx) })
	supervise("maintenance", func() error { return maint.Run(gctx, receiver, ctrl) })

	select {
	case <-ctrl.Done():
	case <-ctx.Done():
		_ = ctrl.TriggerShutdown(fmt.Sprintf("%s: %s", signalReasonPrefix, context.Cause(ctx)))
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := apiServer.Shutdown(); err != nil {
		logger.Error("failed to stop API server", slog.Any("error", err))
	}
	if err := metricsServer.Shutdown(stopCtx); err != nil {
		logger.Error("failed to stop metrics server", slog.Any("error", err))
	}

	if err := g.Wait(); err != nil {
		logger.Debug("component stopped with error", slog.Any("error", err))
	}

	reason, _ := ctrl.Reason()
	if strings.HasPrefix(reason, signalReasonPrefix) {
		logger.Info("light node stopped")
		return nil
	}
	return errors.New(reason)
}

func watchSignals(ctrl *shutdown.Controller) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		_ = ctrl.TriggerShutdown(fmt.Sprintf("%s: %s", signalReasonPrefix, sig))
	case <-ctrl.Done():
	}
}
