package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/famfolio/internal/aggregate"
	"github.com/mtlprog/famfolio/internal/domain"
	"github.com/mtlprog/famfolio/internal/fx"
	"github.com/mtlprog/famfolio/internal/history"
	"github.com/mtlprog/famfolio/internal/ingest"
	"github.com/mtlprog/famfolio/internal/valuation"
)

// QuoteService defines the latest price/sector lookup.
type QuoteService interface {
	Quotes(ctx context.Context, tickers []string) (domain.Quotes, []string)
}

// FXService defines read access to the session rate.
type FXService interface {
	Table() domain.FXTable
	Snapshot() fx.Snapshot
}

// TableLoader defines how holdings and trade inputs are read.
type TableLoader interface {
	Load(ctx context.Context, location string) (*ingest.Table, error)
}

// Settings are the per-run parameters.
type Settings struct {
	FeeRate        decimal.Decimal
	Period         domain.Period
	HoldingsSource string
	TradesSource   string
}

// Service orchestrates the valuation pipeline.
type Service struct {
	quotes   QuoteService
	series   history.SeriesProvider
	fx       FXService
	loader   TableLoader
	settings Settings
	now      func() time.Time
}

// NewService creates a report Service. All dependencies are required.
func NewService(quotes QuoteService, series history.SeriesProvider, fxSvc FXService, loader TableLoader, settings Settings) *Service {
	if quotes == nil {
		panic("report.NewService: quotes is nil")
	}
	if series == nil {
		panic("report.NewService: series is nil")
	}
	if fxSvc == nil {
		panic("report.NewService: fx is nil")
	}
	if loader == nil {
		panic("report.NewService: loader is nil")
	}
	return &Service{
		quotes:   quotes,
		series:   series,
		fx:       fxSvc,
		loader:   loader,
		settings: settings,
		now:      time.Now,
	}
}

// Build values in.Holdings, aggregates them and reconstructs history. It
// fails only when ctx is done; every lookup problem becomes a warning.
func (s *Service) Build(ctx context.Context, in Input) (Report, error) {
	now := s.now()
	warnings := append([]string(nil), in.Warnings...)
	table := s.fx.Table()

	tickers := lo.FilterMap(in.Holdings, func(h domain.Holding, _ int) (string, bool) {
		return h.Ticker, h.AssetType.IsPriced()
	})
	quotes, quoteWarnings := s.quotes.Quotes(ctx, tickers)
	warnings = append(warnings, quoteWarnings...)
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	positions := valuation.ValueAll(in.Holdings, quotes, table, s.settings.FeeRate)
	for _, p := range positions {
		if !table.Known(p.Currency) {
			w := fmt.Sprintf("no FX rate for %s (%s), treated as JPY", p.Currency, p.Ticker)
			slog.Warn("unknown currency, using rate 1", "ticker", p.Ticker, "currency", p.Currency)
			warnings = append(warnings, w)
		}
	}

	hist := history.Build(ctx, in.Holdings, in.Trades, s.series, table, s.settings.Period, now)
	warnings = append(warnings, hist.Warnings...)
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	return Report{
		GeneratedAt: now.UTC(),
		FX:          s.fx.Snapshot(),
		FeeRate:     s.settings.FeeRate,
		Period:      s.settings.Period.String(),
		Positions:   positions,
		Tickers:     aggregate.ByTicker(positions),
		Sectors:     aggregate.BySector(positions),
		Totals:      aggregate.CalculateTotals(positions),
		History:     hist.Series,
		Stats:       history.Summarize(hist.Series),
		Issues:      hist.Issues,
		Warnings:    lo.Uniq(warnings),
	}, nil
}

// BuildFromSources loads the configured holdings and trades, then builds the
// report. Holdings that cannot be read or lack required columns fail the
// run. Trade ledger problems only degrade history to the no-trades case.
func (s *Service) BuildFromSources(ctx context.Context) (Report, error) {
	in, err := s.LoadInput(ctx)
	if err != nil {
		return Report{}, err
	}
	return s.Build(ctx, in)
}

// LoadInput reads and parses the configured sources.
func (s *Service) LoadInput(ctx context.Context) (Input, error) {
	var in Input

	tbl, err := s.loader.Load(ctx, s.settings.HoldingsSource)
	if err != nil {
		return Input{}, fmt.Errorf("loading holdings: %w", err)
	}
	holdings, rowErrs, err := ingest.ReadHoldings(tbl)
	if err != nil {
		return Input{}, fmt.Errorf("reading holdings: %w", err)
	}
	in.Holdings = holdings
	in.Warnings = append(in.Warnings, s.rowWarnings(rowErrs)...)

	if s.settings.TradesSource == "" {
		return in, nil
	}

	tbl, err = s.loader.Load(ctx, s.settings.TradesSource)
	if err != nil {
		in.Warnings = append(in.Warnings, s.noTrades(fmt.Errorf("loading trades: %w", err)))
		return in, nil
	}
	trades, rowErrs, err := ingest.ReadTrades(tbl)
	if err != nil {
		in.Warnings = append(in.Warnings, s.noTrades(err))
		return in, nil
	}
	in.Trades = trades
	in.Warnings = append(in.Warnings, s.rowWarnings(rowErrs)...)
	return in, nil
}

func (s *Service) noTrades(err error) string {
	if errors.Is(err, ingest.ErrNoActionColumn) {
		slog.Warn("trade ledger has no action/type column, history excludes trades", "source", s.settings.TradesSource)
	} else {
		slog.Warn("trade ledger unusable, history excludes trades", "source", s.settings.TradesSource, "error", err)
	}
	return fmt.Sprintf("trades not applied to history: %v", err)
}

func (s *Service) rowWarnings(errs []error) []string {
	return lo.Map(errs, func(err error, _ int) string {
		slog.Warn("skipping input row", "error", err)
		return fmt.Sprintf("skipped row: %v", err)
	})
}
