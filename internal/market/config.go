package market

import "time"

// Config tunes a market Service.
type Config struct {
	CacheTTL    time.Duration
	Concurrency int
}
