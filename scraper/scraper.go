// Package scraper follows the chain head over the node RPC and publishes a
// BlockVerified event for every new height.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/initia-labs/lightnode/config"
	"github.com/initia-labs/lightnode/event"
	"github.com/initia-labs/lightnode/metrics"
	"github.com/initia-labs/lightnode/types"
)

const component = "scraper"

type Publisher interface {
	Send(block types.BlockVerified) (int, error)
}

type ShutdownTrigger interface {
	TriggerShutdown(reason string) error
}

type Scraper struct {
	cfg       *config.ChainConfig
	publisher Publisher
	shutdown  ShutdownTrigger
	logger    *slog.Logger

	maxBurst   uint32
	lastHeight uint32
}

// New creates a scraper that publishes at most maxBurst heights per poll.
// maxBurst must not exceed the event source capacity or receivers lag.
func New(cfg *config.ChainConfig, publisher Publisher, maxBurst int, shutdown ShutdownTrigger, logger *slog.Logger) *Scraper {
	if maxBurst < 1 {
		maxBurst = 1
	}
	return &Scraper{
		cfg:       cfg,
		publisher: publisher,
		maxBurst:  uint32(maxBurst),
		shutdown:  shutdown,
		logger:    logger.With("module", component),
	}
}

// Run polls until ctx is canceled, the event source is closed, or scraping
// fails MaxScrapeErrCount times in a row. The last case triggers shutdown and
// returns the error.
func (s *Scraper) Run(ctx context.Context) error {
	client := fiber.AcquireClient()
	defer fiber.ReleaseClient(client)

	errCount, rateLimited := 0, 0
	for {
		wait := s.cfg.PollingInterval
		height, err := fetchLatestHeight(client, s.cfg.RpcUrl)
		if errors.Is(err, fiber.ErrTooManyRequests) {
			// rate limiting does not count against the error budget
			rateLimited++
			wait = backoffDelay(rateLimited)
			metrics.TrackError(component, "rate_limited")
			s.logger.Warn("rate limited by rpc", slog.Duration("backoff", wait))
		} else if err != nil {
			errCount++
			metrics.TrackError(component, "status_error")
			metrics.SetComponentHealth(component, false)
			s.logger.Warn("error while scraping status",
				slog.Int("err_count", errCount),
				slog.Any("error", err))

			if errCount >= s.cfg.MaxScrapeErrCount {
				fatal := fmt.Errorf("scraper failed %d consecutive times: %w", errCount, err)
				if triggerErr := s.shutdown.TriggerShutdown(fatal.Error()); triggerErr != nil {
					s.logger.Debug("shutdown not triggered", slog.Any("error", triggerErr))
				}
				return fatal
			}
		} else {
			errCount, rateLimited = 0, 0
			metrics.SetComponentHealth(component, true)
			if err := s.publishUpTo(height); err != nil {
				if errors.Is(err, event.ErrClosed) {
					s.logger.Info("event source closed, stopping scraper")
					return nil
				}
				return err
			}
		}

		select {
		case <-ctx.Done():
			s.logger.Info("scraper shutting down gracefully")
			return nil
		case <-time.After(wait):
		}
	}
}

// publishUpTo sends every height after the last published one up to height.
// The first observed height is published alone, and so is the head when the
// gap is wider than maxBurst.
func (s *Scraper) publishUpTo(height uint32) error {
	if s.lastHeight == 0 {
		s.lastHeight = height - 1
	}

	if height > s.lastHeight && height-s.lastHeight > s.maxBurst {
		s.logger.Warn("skipping heights behind the chain head",
			slog.Uint64("from", uint64(s.lastHeight)+1),
			slog.Uint64("to", uint64(height)-1))
		s.lastHeight = height - 1
	}

	for h := s.lastHeight + 1; h > s.lastHeight && h <= height; h++ {
		if _, err := s.publisher.Send(types.BlockVerified{BlockNum: h}); err != nil {
			return err
		}
		s.lastHeight = h
		s.logger.Debug("published block", slog.Uint64("height", uint64(h)))
	}
	return nil
}
