package api

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/initia-labs/lightnode/api/handler/common"
	"github.com/initia-labs/lightnode/api/handler/status"
	"github.com/initia-labs/lightnode/config"
	"github.com/initia-labs/lightnode/metrics"
)

type Api struct {
	cfg    *config.Config
	logger *slog.Logger
	app    *fiber.App
}

func New(cfg *config.Config, logger *slog.Logger, peers common.PeerSource, shutdown common.ShutdownState) *Api {
	logger = logger.With("module", "api")

	app := fiber.New(fiber.Config{
		AppName:               "Lightnode API",
		DisableStartupMessage: true,
	})

	if m := metrics.GetMetrics(); m != nil {
		app.Use(m.HTTPMetrics().Middleware())
	}

	app.Get("/health", health)

	base := common.NewBaseHandler(peers, shutdown, logger)
	status.NewStatusHandler(base).Register(app)

	return &Api{
		cfg:    cfg,
		logger: logger,
		app:    app,
	}
}

// Start blocks until the server stops.
func (a *Api) Start() error {
	port := a.cfg.GetListenPort()
	a.logger.Info("starting API server", slog.String("addr", fmt.Sprintf("http://localhost:%s", port)))

	return a.app.Listen(":" + port)
}

func (a *Api) Shutdown() error {
	a.logger.Info("shutting down API server")
	return a.app.Shutdown()
}

// health handles GET /health
func health(c *fiber.Ctx) error {
	return c.SendString("OK")
}
