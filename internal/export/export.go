// Package export writes report tables to spreadsheet destinations.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mtlprog/famfolio/internal/report"
)

// SheetWriter writes a set of sheets to a spreadsheet destination.
type SheetWriter interface {
	Write(ctx context.Context, sheets []Sheet) error
}

// MonitoringWriter is implemented by destinations that keep a running log of totals.
type MonitoringWriter interface {
	AppendMonitoring(ctx context.Context, rep report.Report) error
}

// Service renders reports and fans them out to every configured writer.
type Service struct {
	writers []SheetWriter
}

// NewService creates a new export Service.
func NewService(writers ...SheetWriter) *Service {
	return &Service{writers: writers}
}

// Enabled reports whether any destination is configured.
func (s *Service) Enabled() bool { return len(s.writers) > 0 }

// Export writes the report to every writer. One failing destination does
// not stop the others; all failures are returned together.
// Implements worker.AfterReportHook.
func (s *Service) Export(ctx context.Context, rep report.Report) error {
	tables := BuildSheets(rep)

	var errs []error
	for _, w := range s.writers {
		if err := w.Write(ctx, tables); err != nil {
			slog.Error("export failed", "writer", fmt.Sprintf("%T", w), "error", err)
			errs = append(errs, err)
			continue
		}
		if mw, ok := w.(MonitoringWriter); ok {
			if err := mw.AppendMonitoring(ctx, rep); err != nil {
				slog.Error("monitoring append failed", "writer", fmt.Sprintf("%T", w), "error", err)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
