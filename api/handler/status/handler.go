package status

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"

	"github.com/initia-labs/lightnode/api/handler/common"
	lncache "github.com/initia-labs/lightnode/cache"
)

const cacheTTL = 250 * time.Millisecond

type StatusHandler struct {
	*common.BaseHandler
	snapshots *lncache.TTLCache[string, StatusResponse]
}

var _ common.HandlerRegistrar = (*StatusHandler)(nil)

func NewStatusHandler(base *common.BaseHandler) *StatusHandler {
	return &StatusHandler{
		BaseHandler: base,
		snapshots:   lncache.NewTTL[string, StatusResponse](1, cacheTTL),
	}
}

func (h *StatusHandler) Register(router fiber.Router) {
	router.Get("/status", h.GetStatus)
	router.Get("/peers", cache.New(cache.Config{Expiration: cacheTTL}), h.GetConnectedPeers)
}
