package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	scheduledomain "github.com/masarmall/leasing/internal/schedule/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func sampleRendered() scheduledomain.Rendered {
	return scheduledomain.Rendered{
		LeaseID: "1790000000000000000",
		Rows: []scheduledomain.Row{
			{
				Index:         1,
				PeriodStart:   day(2024, time.January, 1),
				PeriodEnd:     day(2024, time.January, 31),
				Amount:        decimal.Zero,
				Cumulative:    decimal.Zero,
				DisplayAmount: "Allowance",
				IsAllowance:   true,
			},
			{
				Index:         2,
				PeriodStart:   day(2024, time.February, 1),
				PeriodEnd:     day(2024, time.March, 31),
				Amount:        decimal.NewFromInt(2000),
				Cumulative:    decimal.NewFromInt(2000),
				DisplayAmount: "2,000.00",
				InvoiceNumber: "LINV-001",
				InvoiceStatus: "submitted",
			},
		},
		Total: decimal.NewFromInt(2000),
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		name    string
		value   string
		want    Format
		wantErr error
	}{
		{name: "xlsx", value: "xlsx", want: FormatXLSX},
		{name: "dotted upper", value: ".PDF", want: FormatPDF},
		{name: "unknown", value: "csv", wantErr: ErrUnsupportedFormat},
		{name: "empty", value: "", wantErr: ErrUnsupportedFormat},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseFormat(tc.value)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "lease-42-schedule.xlsx", Filename("42", FormatXLSX))
	assert.Equal(t, "lease-42-schedule.pdf", Filename("42", FormatPDF))
}

func TestXLSXWritesRows(t *testing.T) {
	body, err := XLSX(sampleRendered())
	require.NoError(t, err)
	require.NotEmpty(t, body)

	file, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer file.Close()

	get := func(cell string) string {
		value, err := file.GetCellValue(sheetName, cell)
		require.NoError(t, err)
		return value
	}

	assert.Equal(t, "1790000000000000000", get("B1"))
	assert.Equal(t, "2000.00", get("B2"))
	assert.Equal(t, "#", get("A4"))
	assert.Equal(t, "Status", get("G4"))
	assert.Equal(t, "Allowance", get("D5"))
	assert.Equal(t, "2024-01-31", get("C5"))
	assert.Equal(t, "2,000.00", get("D6"))
	assert.Equal(t, "2000.00", get("E6"))
	assert.Equal(t, "LINV-001", get("F6"))
}

func TestXLSXEmptySchedule(t *testing.T) {
	rendered := scheduledomain.Rendered{
		LeaseID:      "7",
		Rows:         []scheduledomain.Row{},
		Empty:        true,
		EmptyMessage: scheduledomain.EmptyScheduleMessage,
	}
	body, err := XLSX(rendered)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer file.Close()

	value, err := file.GetCellValue(sheetName, "A5")
	require.NoError(t, err)
	assert.Equal(t, scheduledomain.EmptyScheduleMessage, value)
}

func TestPDF(t *testing.T) {
	body, err := PDF(sampleRendered())
	require.NoError(t, err)
	require.NotEmpty(t, body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestExport(t *testing.T) {
	exporter := New(Params{})

	file, err := exporter.Export(context.Background(), FormatPDF, sampleRendered())
	require.NoError(t, err)
	assert.Equal(t, "lease-1790000000000000000-schedule.pdf", file.Name)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.NotEmpty(t, file.Body)

	_, err = exporter.Export(context.Background(), Format("csv"), sampleRendered())
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
