package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/initia-labs/lightnode/types"
)

// ChainConfig describes where verified block heights are scraped from.
type ChainConfig struct {
	RpcUrl            string
	PollingInterval   time.Duration
	MaxScrapeErrCount int
}

func (cc ChainConfig) Validate() error {
	if len(cc.RpcUrl) == 0 {
		return types.NewValidationError("RPC_URL", "required field is missing")
	}
	if u, err := url.Parse(cc.RpcUrl); err != nil {
		return types.NewValidationError("RPC_URL", fmt.Sprintf("invalid URL format: %s", cc.RpcUrl))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		return types.NewValidationError("RPC_URL", fmt.Sprintf("must use http or https scheme, got: %s", u.Scheme))
	}

	if cc.PollingInterval <= 0 {
		return types.NewValidationError("POLLING_INTERVAL", "must be positive")
	}
	if cc.MaxScrapeErrCount < 1 {
		return types.NewValidationError("MAX_SCRAPE_ERR_COUNT", "must be at least 1")
	}

	return nil
}
