// Package export renders rent schedules as spreadsheet and PDF documents.
package export

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/masarmall/leasing/internal/observability/metrics"
	scheduledomain "github.com/masarmall/leasing/internal/schedule/domain"
	"go.uber.org/fx"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

const dateLayout = "2006-01-02"

var ErrUnsupportedFormat = errors.New("unsupported_export_format")

var columns = []string{"#", "Start", "End", "Amount", "Cumulative", "Invoice", "Status"}

// File is a rendered export ready to be served.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

var Module = fx.Module("export",
	fx.Provide(New),
)

type Params struct {
	fx.In

	Metrics *metrics.Metrics `optional:"true"`
}

type Exporter struct {
	metrics *metrics.Metrics
}

func New(p Params) *Exporter {
	return &Exporter{metrics: p.Metrics}
}

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(value), "."))) {
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

func (e *Exporter) Export(ctx context.Context, format Format, rendered scheduledomain.Rendered) (File, error) {
	var (
		body []byte
		err  error
	)
	switch format {
	case FormatXLSX:
		body, err = XLSX(rendered)
	case FormatPDF:
		body, err = PDF(rendered)
	default:
		return File{}, ErrUnsupportedFormat
	}
	if err != nil {
		return File{}, err
	}
	e.metrics.RecordExport(ctx, string(format))
	return File{
		Name:        Filename(rendered.LeaseID, format),
		ContentType: ContentType(format),
		Body:        body,
	}, nil
}

func Filename(leaseID string, format Format) string {
	return slug.Make("lease-"+leaseID+"-schedule") + "." + string(format)
}

func ContentType(format Format) string {
	switch format {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// cells flattens a row into the exported column order.
func cells(row scheduledomain.Row) []string {
	return []string{
		strconv.Itoa(row.Index),
		formatDate(row.PeriodStart),
		formatDate(row.PeriodEnd),
		row.DisplayAmount,
		row.Cumulative.StringFixed(2),
		row.InvoiceNumber,
		row.InvoiceStatus,
	}
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
