package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/famfolio/internal/domain"
	"github.com/mtlprog/famfolio/internal/fx"
	"github.com/mtlprog/famfolio/internal/history"
	"github.com/mtlprog/famfolio/internal/render"
	"github.com/mtlprog/famfolio/internal/report"
)

// ReportBuilder builds a fresh report from the configured sources.
type ReportBuilder interface {
	BuildFromSources(ctx context.Context) (report.Report, error)
}

// LatestReports exposes the last report built in the background.
type LatestReports interface {
	Latest() (report.Report, bool)
}

// FXRefresher reads and refreshes the session USD→JPY rate.
type FXRefresher interface {
	Snapshot() fx.Snapshot
	Refresh(ctx context.Context) (decimal.Decimal, error)
}

// Handler provides HTTP endpoints for the portfolio API.
type Handler struct {
	reports ReportBuilder
	latest  LatestReports // optional
	fx      FXRefresher
}

// NewHandler creates a new API handler.
func NewHandler(reports ReportBuilder, latest LatestReports, fxSvc FXRefresher) *Handler {
	return &Handler{reports: reports, latest: latest, fx: fxSvc}
}

// HistoryResponse is the body of GET /api/v1/history.
type HistoryResponse struct {
	Period   string              `json:"period"`
	Series   []domain.ValuePoint `json:"series"`
	Stats    *history.Stats      `json:"stats,omitempty"`
	Issues   []history.Issue     `json:"issues,omitempty"`
	Warnings []string            `json:"warnings,omitempty"`
}

// RefreshResponse is the body of POST /api/v1/fx/refresh. Warning is set
// when the live fetch failed and the previous rate was kept.
type RefreshResponse struct {
	FX      fx.Snapshot `json:"fx"`
	Warning string      `json:"warning,omitempty"`
}

// GetReport handles GET /api/v1/report. ?format=markdown returns the
// rendered markdown document instead of JSON.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.build(w, r)
	if !ok {
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, rep)
	case "markdown", "md":
		md, err := render.Markdown(rep)
		if err != nil {
			slog.Error("failed to render report", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(md))
	default:
		writeError(w, http.StatusBadRequest, "unsupported format, expected json or markdown")
	}
}

// GetLatestReport handles GET /api/v1/report/latest.
func (h *Handler) GetLatestReport(w http.ResponseWriter, _ *http.Request) {
	if h.latest == nil {
		writeError(w, http.StatusNotFound, "background reports are disabled")
		return
	}
	rep, ok := h.latest.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no report built yet")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// GetHistory handles GET /api/v1/history.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.build(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{
		Period:   rep.Period,
		Series:   rep.History,
		Stats:    rep.Stats,
		Issues:   rep.Issues,
		Warnings: rep.Warnings,
	})
}

// GetFX handles GET /api/v1/fx.
func (h *Handler) GetFX(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.fx.Snapshot())
}

// RefreshFX handles POST /api/v1/fx/refresh. A failed fetch still answers
// 200 because the previous rate stays in use.
func (h *Handler) RefreshFX(w http.ResponseWriter, r *http.Request) {
	resp := RefreshResponse{}
	if _, err := h.fx.Refresh(r.Context()); err != nil {
		resp.Warning = err.Error()
	}
	resp.FX = h.fx.Snapshot()
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) build(w http.ResponseWriter, r *http.Request) (report.Report, bool) {
	rep, err := h.reports.BuildFromSources(r.Context())
	if err != nil {
		slog.Error("failed to build report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return report.Report{}, false
	}
	return rep, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
