package status

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

const snapshotKey = "status"

// GetStatus handles GET /status
func (h *StatusHandler) GetStatus(c *fiber.Ctx) error {
	if res, ok := h.snapshots.Get(snapshotKey); ok {
		res.ShuttingDown = h.IsShuttingDown()
		return c.JSON(res)
	}

	ctx := c.UserContext()
	peers := h.GetPeers()

	mapSize, err := peers.RoutingMapSize(ctx)
	if err != nil {
		return h.fail(err)
	}
	total, public, err := peers.CountDHTEntries(ctx)
	if err != nil {
		return h.fail(err)
	}
	connected, err := peers.ListConnectedPeers(ctx)
	if err != nil {
		return h.fail(err)
	}

	res := StatusResponse{
		RoutingMapSize: mapSize,
		TotalPeers:     total,
		PublicPeers:    public,
		ConnectedPeers: len(connected),
	}
	h.snapshots.Set(snapshotKey, res)

	res.ShuttingDown = h.IsShuttingDown()
	return c.JSON(res)
}

// GetConnectedPeers handles GET /peers
func (h *StatusHandler) GetConnectedPeers(c *fiber.Ctx) error {
	connected, err := h.GetPeers().ListConnectedPeers(c.UserContext())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(PeersResponse{Peers: connected})
}

func (h *StatusHandler) fail(err error) error {
	h.GetLogger().Warn("status query failed", slog.Any("error", err))
	return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
}
