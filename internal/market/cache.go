package market

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// cache is a TTL cache for lookup results. A nil *cache never hits.
type cache struct {
	c   *ristretto.Cache
	ttl time.Duration
}

// newCache returns nil when ttl is not positive, disabling caching.
func newCache(ttl time.Duration) (*cache, error) {
	if ttl <= 0 {
		return nil, nil
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1 << 14,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating lookup cache: %w", err)
	}
	return &cache{c: c, ttl: ttl}, nil
}

// cacheKey formats "{kind}:{ticker}[:{extra}]" e.g. "history:AAPL:6mo".
func cacheKey(kind, ticker string, extra ...string) string {
	key := fmt.Sprintf("%s:%s", kind, ticker)
	for _, e := range extra {
		key = fmt.Sprintf("%s:%s", key, e)
	}
	return key
}

func (c *cache) get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	return c.c.Get(key)
}

func (c *cache) set(key string, val any) {
	if c == nil {
		return
	}
	c.c.SetWithTTL(key, val, 1, c.ttl)
	// ristretto applies writes asynchronously
	c.c.Wait()
}

func (c *cache) close() {
	if c == nil {
		return
	}
	c.c.Close()
}
