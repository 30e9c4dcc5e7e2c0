package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/mtlprog/famfolio/internal/api"
	"github.com/mtlprog/famfolio/internal/config"
	"github.com/mtlprog/famfolio/internal/render"
	"github.com/mtlprog/famfolio/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "famfolio",
		Usage: "value a JPY-based multi-currency portfolio",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "holdings", Usage: "holdings CSV/XLSX path or URL (overrides HOLDINGS_SOURCE)"},
			&cli.StringFlag{Name: "trades", Usage: "trade ledger CSV/XLSX path or URL (overrides TRADES_SOURCE)"},
			&cli.StringFlag{Name: "period", Usage: "history window such as 6mo, 1y, 30d (overrides HISTORY_PERIOD)"},
			&cli.StringFlag{Name: "xlsx", Usage: "write exports to this workbook (overrides XLSX_EXPORT_PATH)"},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and the periodic report worker",
				Action: runServe,
			},
			{
				Name:  "report",
				Usage: "build one report and print it",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "terminal", Usage: "terminal, markdown or json"},
					&cli.StringFlag{Name: "style", Value: "dark", Usage: "glamour style for terminal output"},
					&cli.BoolFlag{Name: "refresh-fx", Usage: "fetch a live USDJPY rate before valuing"},
				},
				Action: runReport,
			},
			{
				Name:  "export",
				Usage: "build one report and write it to the configured spreadsheets",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "refresh-fx", Usage: "fetch a live USDJPY rate before valuing"},
				},
				Action: runExport,
			},
			{
				Name:  "fx",
				Usage: "inspect the USDJPY rate",
				Subcommands: []*cli.Command{
					{
						Name:   "refresh",
						Usage:  "fetch a live USDJPY rate and print it",
						Action: runFXRefresh,
					},
				},
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(c *cli.Context) (*services, error) {
	cfg, err := applyFlags(c, config.Load())
	if err != nil {
		return nil, err
	}
	return newServices(cfg)
}

func refreshFX(c *cli.Context, svc *services) {
	if !c.Bool("refresh-fx") {
		return
	}
	if _, err := svc.fx.Refresh(c.Context); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}

func runReport(c *cli.Context) error {
	svc, err := setup(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	refreshFX(c, svc)

	rep, err := svc.reports.BuildFromSources(c.Context)
	if err != nil {
		return err
	}

	switch c.String("format") {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "markdown", "md":
		md, err := render.Markdown(rep)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(os.Stdout, md)
		return err
	case "terminal":
		out, err := render.Terminal(rep, c.String("style"))
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(os.Stdout, out)
		return err
	default:
		return fmt.Errorf("unsupported --format %q", c.String("format"))
	}
}

func runExport(c *cli.Context) error {
	svc, err := setup(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	exporter, err := newExporter(c.Context, svc.cfg)
	if err != nil {
		return err
	}
	if !exporter.Enabled() {
		return errors.New("no export destination: set SHEETS_SPREADSHEET_ID or XLSX_EXPORT_PATH")
	}

	refreshFX(c, svc)

	rep, err := svc.reports.BuildFromSources(c.Context)
	if err != nil {
		return err
	}
	if err := exporter.Export(c.Context, rep); err != nil {
		return fmt.Errorf("exporting report: %w", err)
	}
	slog.Info("report exported", "positions", rep.Totals.Positions, "warnings", len(rep.Warnings))
	return nil
}

func runFXRefresh(c *cli.Context) error {
	svc, err := setup(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	rate, err := svc.fx.Refresh(c.Context)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	fmt.Printf("USDJPY %s\n", rate.StringFixed(3))
	return nil
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	svc, err := setup(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	exporter, err := newExporter(ctx, svc.cfg)
	if err != nil {
		return err
	}

	var hook worker.AfterReportHook
	if exporter.Enabled() {
		hook = exporter
	}
	reportWorker := worker.NewReportWorker(svc.reports, svc.cfg.ExportInterval, hook)
	go reportWorker.Run(ctx)

	if svc.cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, fx refresh endpoint is unprotected")
	}

	handler := api.NewHandler(svc.reports, reportWorker, svc.fx)
	srv := api.NewServer(svc.cfg.HTTPPort, handler, svc.cfg.AdminAPIKey)

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on :%s", svc.cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return fmt.Errorf("HTTP server error: %w", err)
	}
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}
