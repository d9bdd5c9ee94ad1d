package export

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/Simplici0/rab.works/internal/currency"
	"github.com/Simplici0/rab.works/internal/rab"
)

var (
	pdfGray    = &props.Color{Red: 80, Green: 80, Blue: 80}
	pdfHeadBg  = &props.Color{Red: 51, Green: 51, Blue: 51}
	pdfWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	pdfTotalBg = &props.Color{Red: 240, Green: 240, Blue: 240}
)

// EstimatePDF renders the estimate as a printable A4 document with the same
// columns and totals block as the workbook export.
func EstimatePDF(est rab.Estimate) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Halaman {current} dari {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addPDFHeader(m, est)
	addPDFTableHeader(m)
	if len(est.Items) == 0 {
		m.AddRows(row.New(7).Add(
			col.New(12).Add(text.New("Belum ada item pekerjaan.", props.Text{Size: 8, Style: fontstyle.Italic})),
		))
	}
	for i, item := range est.Items {
		addPDFItemRow(m, i+1, item)
	}
	addPDFTotals(m, est.Totals)
	if est.Notes != "" {
		m.AddRows(row.New(4))
		m.AddRows(row.New(6).Add(
			col.New(12).Add(text.New("Catatan: "+est.Notes, props.Text{Size: 8, Color: pdfGray})),
		))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func addPDFHeader(m core.Maroto, est rab.Estimate) {
	title := est.Title
	if title == "" {
		title = defaultSheet
	}
	m.AddRows(row.New(12).Add(
		col.New(12).Add(text.New("RAB "+title, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center})),
	))

	meta := props.Text{Size: 9, Color: pdfGray}
	metaRight := meta
	metaRight.Align = align.Right
	date := ""
	if !est.CreatedAt.IsZero() {
		date = est.CreatedAt.Format("2006-01-02")
	}
	m.AddRows(row.New(8).Add(
		col.New(6).Add(text.New(fmt.Sprintf("Klien: %s   Lokasi: %s", est.ClientName, est.Location), meta)),
		col.New(6).Add(text.New(date, metaRight)),
	))
	m.AddRows(row.New(4))
}

func addPDFTableHeader(m core.Maroto) {
	head := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center, Color: pdfWhite}
	cell := &props.Cell{BackgroundColor: pdfHeadBg}

	cols := make([]core.Col, 0, len(pdfColumns))
	for _, c := range pdfColumns {
		cols = append(cols, col.New(c.size).Add(text.New(c.label, head)).WithStyle(cell))
	}
	m.AddRows(row.New(8).Add(cols...))
}

type pdfColumn struct {
	label string
	size  int
}

// Sizes add up to the 12-column grid.
var pdfColumns = []pdfColumn{
	{"No", 1},
	{"Uraian Pekerjaan", 3},
	{"Kategori", 2},
	{"Volume", 1},
	{"Satuan", 1},
	{"Harga Satuan", 2},
	{"Jumlah", 2},
}

func addPDFItemRow(m core.Maroto, n int, item rab.LineItem) {
	base := props.Text{Size: 8, Align: align.Center}
	left := base
	left.Align = align.Left
	right := base
	right.Align = align.Right

	desc := item.Description
	if item.SubCategory != "" {
		desc += " (" + item.SubCategory + ")"
	}

	m.AddRows(row.New(7).Add(
		col.New(1).Add(text.New(fmt.Sprintf("%d", n), base)),
		col.New(3).Add(text.New(desc, left)),
		col.New(2).Add(text.New(item.Category, left)),
		col.New(1).Add(text.New(currency.FormatNumber(item.Volume, 3), right)),
		col.New(1).Add(text.New(item.Unit, base)),
		col.New(2).Add(text.New(currency.FormatRupiah(item.UnitPrice), right)),
		col.New(2).Add(text.New(currency.FormatRupiah(item.Amount), right)),
	))
}

func addPDFTotals(m core.Maroto, t rab.Totals) {
	m.AddRows(row.New(6))

	cell := &props.Cell{BackgroundColor: pdfTotalBg}
	for _, line := range totalLines(t) {
		style := props.Text{Size: 9, Align: align.Right}
		if line.label == "Total" {
			style.Style = fontstyle.Bold
		}
		m.AddRows(row.New(8).Add(
			col.New(8).Add(text.New(line.label, style)).WithStyle(cell),
			col.New(4).Add(text.New(currency.FormatRupiah(line.value), style)).WithStyle(cell),
		))
	}
}
