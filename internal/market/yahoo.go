package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"

	"github.com/mtlprog/famfolio/internal/domain"
)

// latestClosePeriod is wide enough to cover weekends and market holidays.
const latestClosePeriod = "5d"

var (
	errNoPrice  = errors.New("no non-zero close in range")
	errNoSector = errors.New("no sector classification")
)

// YahooClient reads prices, sectors and daily history from Yahoo Finance.
type YahooClient struct {
	maxRetries int
	baseDelay  time.Duration
}

// NewYahooClient creates a client that retries each lookup up to maxRetries
// times with exponential backoff starting at baseDelay.
func NewYahooClient(maxRetries int, baseDelay time.Duration) *YahooClient {
	return &YahooClient{maxRetries: maxRetries, baseDelay: baseDelay}
}

// LatestClose returns the most recent non-zero daily close.
func (c *YahooClient) LatestClose(ctx context.Context, symbol string) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := c.withRetry(ctx, symbol, func(t *ticker.Ticker) error {
		bars, err := t.History(models.HistoryParams{Period: latestClosePeriod, Interval: "1d"})
		if err != nil {
			return fmt.Errorf("fetching recent bars: %w", err)
		}
		for i := len(bars) - 1; i >= 0; i-- {
			if bars[i].Close > 0 {
				price = decimal.NewFromFloat(bars[i].Close)
				return nil
			}
		}
		return errNoPrice
	})
	return price, err
}

// Sector returns the sector classification from the ticker profile.
func (c *YahooClient) Sector(ctx context.Context, symbol string) (string, error) {
	var sector string
	err := c.withRetry(ctx, symbol, func(t *ticker.Ticker) error {
		info, err := t.Info()
		if err != nil {
			return fmt.Errorf("fetching info: %w", err)
		}
		if info == nil || strings.TrimSpace(info.Sector) == "" {
			return errNoSector
		}
		sector = info.Sector
		return nil
	})
	return sector, err
}

// History returns adjusted daily closes over period, oldest first.
func (c *YahooClient) History(ctx context.Context, symbol string, period domain.Period) ([]domain.PricePoint, error) {
	var points []domain.PricePoint
	err := c.withRetry(ctx, symbol, func(t *ticker.Ticker) error {
		bars, err := t.History(models.HistoryParams{
			Period:     period.String(),
			Interval:   "1d",
			AutoAdjust: true,
		})
		if err != nil {
			return fmt.Errorf("fetching history: %w", err)
		}
		points = make([]domain.PricePoint, 0, len(bars))
		for _, bar := range bars {
			if bar.Close <= 0 {
				continue
			}
			points = append(points, domain.PricePoint{
				Date:  domain.Day(bar.Date),
				Close: decimal.NewFromFloat(bar.Close),
			})
		}
		return nil
	})
	return points, err
}

// withRetry opens a ticker and runs fn, retrying with exponential backoff.
// errNoPrice and errNoSector are final and not retried.
func (c *YahooClient) withRetry(ctx context.Context, symbol string, fn func(t *ticker.Ticker) error) error {
	var lastErr error
	for attempt := range c.maxRetries + 1 {
		if attempt > 0 {
			wait := c.baseDelay * time.Duration(1<<uint(attempt-1))
			slog.Debug("retrying yahoo lookup", "ticker", symbol, "attempt", attempt+1, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		t, err := ticker.New(symbol)
		if err != nil {
			lastErr = fmt.Errorf("creating ticker %s: %w", symbol, err)
			continue
		}
		err = fn(t)
		t.Close()
		if err == nil {
			return nil
		}
		if errors.Is(err, errNoPrice) || errors.Is(err, errNoSector) {
			return fmt.Errorf("%s: %w", symbol, err)
		}
		lastErr = fmt.Errorf("%s: %w", symbol, err)
	}
	return lastErr
}
