package scraper

import (
	"math"
	"math/rand"
	"time"
)

const (
	baseBackoffDelay  = 1 * time.Second
	maxBackoffDelay   = 30 * time.Second
	backoffMultiplier = 2.0
	jitterFactor      = 0.1
)

// backoffDelay returns the exponential delay with +/-10% jitter for the given
// rate limited attempt, never below baseBackoffDelay.
func backoffDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return baseBackoffDelay
	}

	baseSeconds := baseBackoffDelay.Seconds()
	delaySeconds := baseSeconds * math.Pow(backoffMultiplier, float64(attempt-1))
	delaySeconds = math.Min(delaySeconds, maxBackoffDelay.Seconds())

	delaySeconds += delaySeconds * jitterFactor * (2*rand.Float64() - 1)
	delaySeconds = math.Max(delaySeconds, baseSeconds)

	return time.Duration(math.Round(delaySeconds*1000)) * time.Millisecond
}
