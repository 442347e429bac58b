package sentry_integration

import (
	"errors"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/initia-labs/lightnode/config"
	"github.com/initia-labs/lightnode/types"
)

const flushTimeout = 2 * time.Second

// Init configures the global hub. It is a no-op when cfg is nil.
func Init(cfg *config.SentryConfig, release string) error {
	if cfg == nil {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		SampleRate:       cfg.SampleRate,
		Environment:      cfg.Environment,
		Release:          release,
		AttachStacktrace: true,
	})
	if err != nil {
		return types.NewConfigError("failed to initialize sentry", err)
	}
	return nil
}

func CaptureException(hub *sentry.Hub, err error, level sentry.Level) {
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		hub.CaptureException(err)
	})
}

// ShutdownHook reports the shutdown reason at fatal level and waits for the
// event to be delivered.
func ShutdownHook(hub *sentry.Hub) func(reason string) {
	return func(reason string) {
		CaptureException(hub, errors.New(reason), sentry.LevelFatal)
		hub.Flush(flushTimeout)
	}
}
