package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/famfolio/internal/config"
	"github.com/mtlprog/famfolio/internal/domain"
	"github.com/mtlprog/famfolio/internal/export"
	"github.com/mtlprog/famfolio/internal/fx"
	"github.com/mtlprog/famfolio/internal/ingest"
	"github.com/mtlprog/famfolio/internal/market"
	"github.com/mtlprog/famfolio/internal/report"
)

// services is the wired object graph shared by every command.
type services struct {
	cfg     config.Config
	market  *market.Service
	fx      *fx.Service
	reports *report.Service
}

func (s *services) Close() { s.market.Close() }

// applyFlags overrides env-derived config with flags set on the command line.
func applyFlags(c *cli.Context, cfg config.Config) (config.Config, error) {
	if c.IsSet("holdings") {
		cfg.HoldingsSource = c.String("holdings")
	}
	if c.IsSet("trades") {
		cfg.TradesSource = c.String("trades")
	}
	if c.IsSet("period") {
		p, err := domain.ParsePeriod(c.String("period"))
		if err != nil {
			return cfg, fmt.Errorf("invalid --period: %w", err)
		}
		cfg.HistoryPeriod = p
	}
	if c.IsSet("xlsx") {
		cfg.XLSXExportPath = c.String("xlsx")
	}
	return cfg, nil
}

func newServices(cfg config.Config) (*services, error) {
	yahoo := market.NewYahooClient(cfg.YahooRetryMax, cfg.YahooRetryBaseDelay)
	coingecko := market.NewCoinGeckoClient(cfg.CoinGeckoURL, cfg.CoinGeckoDelay, cfg.CoinGeckoRetryMax)

	marketSvc, err := market.NewService(yahoo, market.Config{
		CacheTTL:    cfg.QuoteCacheTTL,
		Concurrency: cfg.QuoteConcurrency,
	}, market.WithCryptoFallback(coingecko))
	if err != nil {
		return nil, fmt.Errorf("creating market service: %w", err)
	}

	fxSvc := fx.NewService(fx.NewQuoteSource(yahoo), cfg.FallbackUSDJPY, cfg.FXCacheTTL)
	loader := ingest.NewLoader(cfg.FetchRetryMax, cfg.FetchRetryBaseDelay)

	reports := report.NewService(marketSvc, marketSvc, fxSvc, loader, report.Settings{
		FeeRate:        cfg.FeeRate,
		Period:         cfg.HistoryPeriod,
		HoldingsSource: cfg.HoldingsSource,
		TradesSource:   cfg.TradesSource,
	})

	return &services{cfg: cfg, market: marketSvc, fx: fxSvc, reports: reports}, nil
}

// newExporter builds the export service from whichever destinations are configured.
func newExporter(ctx context.Context, cfg config.Config) (*export.Service, error) {
	var writers []export.SheetWriter

	if cfg.SheetsID != "" {
		if cfg.GoogleCredentials == "" {
			return nil, fmt.Errorf("SHEETS_SPREADSHEET_ID is set but GOOGLE_CREDENTIALS_JSON is empty")
		}
		sw, err := export.NewSheetsWriter(ctx, cfg.SheetsID, cfg.GoogleCredentials)
		if err != nil {
			return nil, fmt.Errorf("creating sheets writer: %w", err)
		}
		writers = append(writers, sw)
		slog.Info("Google Sheets export enabled", "spreadsheet", cfg.SheetsID)
	}

	if cfg.XLSXExportPath != "" {
		writers = append(writers, export.NewXLSXWriter(cfg.XLSXExportPath))
		slog.Info("XLSX export enabled", "path", cfg.XLSXExportPath)
	}

	return export.NewService(writers...), nil
}
