// Package market looks up latest prices, sector labels and daily price
// history for ticker symbols.
package market

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/famfolio/internal/domain"
)

// Source is a market data backend.
type Source interface {
	LatestClose(ctx context.Context, symbol string) (decimal.Decimal, error)
	Sector(ctx context.Context, symbol string) (string, error)
	History(ctx context.Context, symbol string, period domain.Period) ([]domain.PricePoint, error)
}

// PriceSource provides latest prices only. Used as a fallback for crypto pairs.
type PriceSource interface {
	LatestClose(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Service enforces the lookup contract over a Source: lookups never fail the
// caller, each ticker is looked up independently, results are cached.
type Service struct {
	primary     Source
	fallback    PriceSource
	cache       *cache
	concurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithCryptoFallback sets a price source consulted for crypto pairs the primary could not price.
func WithCryptoFallback(src PriceSource) Option {
	return func(s *Service) { s.fallback = src }
}

// NewService creates a market Service. Results are cached for cfg.CacheTTL;
// a zero TTL disables caching.
func NewService(primary Source, cfg Config, opts ...Option) (*Service, error) {
	if primary == nil {
		panic("market.NewService: primary source is nil")
	}
	c, err := newCache(cfg.CacheTTL)
	if err != nil {
		return nil, err
	}
	s := &Service{
		primary:     primary,
		cache:       c,
		concurrency: max(cfg.Concurrency, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the cache.
func (s *Service) Close() {
	s.cache.close()
}

// Quotes returns the latest price and sector for each distinct ticker. A
// failed price lookup yields a nil price; a failed sector lookup yields
// "Unknown". Crypto pairs are classified "Crypto" without a lookup. The
// returned warnings describe every degraded lookup.
func (s *Service) Quotes(ctx context.Context, tickers []string) (domain.Quotes, []string) {
	symbols := lo.Uniq(lo.Filter(lo.Map(tickers, func(t string, _ int) string {
		return strings.TrimSpace(t)
	}), func(t string, _ int) bool { return t != "" }))

	quotes := domain.NewQuotes()
	var warnings []string
	var mu sync.Mutex

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			price, priceErr := s.price(ctx, symbol)
			sector, sectorErr := s.sector(ctx, symbol)

			mu.Lock()
			defer mu.Unlock()
			quotes.Prices[symbol] = price
			quotes.Sectors[symbol] = sector
			if priceErr != nil {
				w := fmt.Sprintf("price unavailable for %s: %v", symbol, priceErr)
				slog.Warn("price lookup failed", "ticker", symbol, "error", priceErr)
				warnings = append(warnings, w)
			}
			if sectorErr != nil {
				slog.Info("sector lookup failed, using Unknown", "ticker", symbol, "error", sectorErr)
			}
		}(symbol)
	}

	wg.Wait()
	slices.Sort(warnings)
	return quotes, warnings
}

func (s *Service) price(ctx context.Context, symbol string) (*decimal.Decimal, error) {
	key := cacheKey("price", symbol)
	if v, ok := s.cache.get(key); ok {
		p := v.(decimal.Decimal)
		return &p, nil
	}

	p, err := s.primary.LatestClose(ctx, symbol)
	if err != nil && s.fallback != nil && domain.IsCryptoSymbol(symbol) {
		slog.Info("primary price lookup failed, trying crypto fallback", "ticker", symbol, "error", err)
		p, err = s.fallback.LatestClose(ctx, symbol)
	}
	if err != nil {
		return nil, err
	}
	s.cache.set(key, p)
	return &p, nil
}

func (s *Service) sector(ctx context.Context, symbol string) (string, error) {
	if domain.IsCryptoSymbol(symbol) {
		return domain.SectorCrypto, nil
	}

	key := cacheKey("sector", symbol)
	if v, ok := s.cache.get(key); ok {
		return v.(string), nil
	}

	sector, err := s.primary.Sector(ctx, symbol)
	if err != nil {
		return domain.SectorUnknown, err
	}
	if strings.TrimSpace(sector) == "" {
		return domain.SectorUnknown, nil
	}
	s.cache.set(key, sector)
	return sector, nil
}

// History returns the daily close series for symbol over period.
func (s *Service) History(ctx context.Context, symbol string, period domain.Period) ([]domain.PricePoint, error) {
	key := cacheKey("history", symbol, period.String())
	if v, ok := s.cache.get(key); ok {
		return v.([]domain.PricePoint), nil
	}

	points, err := s.primary.History(ctx, symbol, period)
	if err != nil {
		return nil, fmt.Errorf("fetching history for %s: %w", symbol, err)
	}
	s.cache.set(key, points)
	return points, nil
}
