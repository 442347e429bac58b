package types

import "time"

// Scraper constants
const (
	MaxScrapeErrCount = 5
	StatusTimeout     = 10 * time.Second
)

// Event source constants
const (
	DefaultEventChannelCapacity = 1 << 7
)

// Routing map constants
const (
	DefaultMaxPeers   = 1 << 12
	DefaultMaxRecords = 1 << 16
	DefaultPeerTTL    = 30 * time.Minute
	DefaultRecordTTL  = 24 * time.Hour
)
