package scraper

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/initia-labs/lightnode/types"
)

type StatusResponse struct {
	Result struct {
		SyncInfo struct {
			LatestBlockHeight string `json:"latest_block_height"`
		} `json:"sync_info"`
	} `json:"result"`
}

func fetchLatestHeight(client *fiber.Client, rpcUrl string) (uint32, error) {
	url := fmt.Sprintf("%s/status", rpcUrl)
	code, body, errs := client.Get(url).Timeout(types.StatusTimeout).Bytes()
	if err := errors.Join(errs...); err != nil {
		return 0, types.NewNetworkError(url, err)
	}
	if code == fiber.StatusTooManyRequests {
		return 0, errors.Join(fiber.ErrTooManyRequests, fmt.Errorf("body: %s", string(body)))
	}
	if code != fiber.StatusOK {
		return 0, types.NewNetworkError(url, fmt.Errorf("http response: %d, body: %s", code, string(body)))
	}

	var res StatusResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return 0, err
	}
	return parseHeight(res.Result.SyncInfo.LatestBlockHeight)
}

func parseHeight(raw string) (uint32, error) {
	height, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, types.NewInvalidValueError("latest_block_height", raw, "not a block height")
	}
	if height == 0 {
		return 0, types.NewInvalidValueError("latest_block_height", raw, "chain has no blocks yet")
	}
	return uint32(height), nil
}
