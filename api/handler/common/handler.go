package common

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

type HandlerRegistrar interface {
	Register(router fiber.Router)
}

// PeerSource is the read side of the p2p client the API exposes.
type PeerSource interface {
	RoutingMapSize(ctx context.Context) (int, error)
	CountDHTEntries(ctx context.Context) (int, int, error)
	ListConnectedPeers(ctx context.Context) ([]string, error)
}

// ShutdownState reports whether the node is stopping.
type ShutdownState interface {
	Reason() (string, bool)
}

type BaseHandler struct {
	peers    PeerSource
	shutdown ShutdownState
	logger   *slog.Logger
}

func NewBaseHandler(peers PeerSource, shutdown ShutdownState, logger *slog.Logger) *BaseHandler {
	return &BaseHandler{
		peers:    peers,
		shutdown: shutdown,
		logger:   logger,
	}
}

func (h *BaseHandler) GetPeers() PeerSource    { return h.peers }
func (h *BaseHandler) GetLogger() *slog.Logger { return h.logger }

func (h *BaseHandler) IsShuttingDown() bool {
	_, triggered := h.shutdown.Reason()
	return triggered
}
