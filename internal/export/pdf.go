package export

import (
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	scheduledomain "github.com/masarmall/leasing/internal/schedule/domain"
)

// column widths on maroto's 12-unit grid, in export column order
var pdfWidths = []int{1, 2, 2, 2, 2, 2, 1}

// PDF renders the schedule as a paginated table.
func PDF(rendered scheduledomain.Rendered) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Rent schedule", props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(8,
		text.NewCol(6, "Lease: "+rendered.LeaseID, props.Text{Size: 9}),
		text.NewCol(6, "Total: "+rendered.Total.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRow(8, tableRow(columns, props.Text{Style: fontstyle.Bold, Size: 8})...)

	if rendered.Empty {
		m.AddRow(8, text.NewCol(12, rendered.EmptyMessage, props.Text{Size: 9}))
	}
	for _, row := range rendered.Rows {
		m.AddRow(7, tableRow(cells(row), props.Text{Size: 8})...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func tableRow(values []string, style props.Text) []core.Col {
	cols := make([]core.Col, 0, len(values))
	for i, value := range values {
		cellStyle := style
		if i >= 3 && i <= 4 {
			cellStyle.Align = align.Right
		}
		cols = append(cols, text.NewCol(pdfWidths[i], value, cellStyle))
	}
	return cols
}
