// Package export renders saved estimates as spreadsheets, PDF documents and plain text.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/rab.works/internal/rab"
)

const (
	defaultSheet = "RAB"
	headerRow    = 5
	// Built-in number format "#,##0".
	numFmtThousands = 3
)

var columns = []string{"A", "B", "C", "D", "E", "F", "G"}

// EstimateXLSX builds a one-sheet workbook with the estimate header, its line
// items and the totals block.
func EstimateXLSX(est rab.Estimate) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(est.Title)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	lastCol := columns[len(columns)-1]

	widths := []float64{6, 42, 22, 10, 10, 18, 20}
	for i, col := range columns {
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	itemStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders()})
	if err != nil {
		return nil, fmt.Errorf("create item style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders(), NumFmt: numFmtThousands})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}
	labelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}, NumFmt: numFmtThousands})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheet, "A1", sanitizeExcelCell("RAB "+est.Title))
	f.SetCellStyle(sheet, "A1", lastCol+"1", titleStyle)

	meta := []string{
		"Klien: " + est.ClientName,
		"Lokasi: " + est.Location,
	}
	if !est.CreatedAt.IsZero() {
		meta[1] += "    Tanggal: " + est.CreatedAt.Format("2006-01-02")
	}
	for i, line := range meta {
		cell := fmt.Sprintf("A%d", i+2)
		f.SetCellValue(sheet, cell, sanitizeExcelCell(line))
	}

	headers := []string{"No", "Uraian Pekerjaan", "Kategori", "Volume", "Satuan", "Harga Satuan", "Jumlah"}
	for i, h := range headers {
		f.SetCellValue(sheet, fmt.Sprintf("%s%d", columns[i], headerRow), h)
	}
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("%s%d", lastCol, headerRow), headerStyle)

	row := headerRow + 1
	for i, item := range est.Items {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(sheet, "A"+r, i+1)
		f.SetCellValue(sheet, "B"+r, sanitizeExcelCell(item.Description))
		f.SetCellValue(sheet, "C"+r, sanitizeExcelCell(item.Category))
		f.SetCellValue(sheet, "D"+r, item.Volume)
		f.SetCellValue(sheet, "E"+r, sanitizeExcelCell(item.Unit))
		f.SetCellValue(sheet, "F"+r, item.UnitPrice)
		f.SetCellValue(sheet, "G"+r, item.Amount)
		f.SetCellStyle(sheet, "A"+r, "E"+r, itemStyle)
		f.SetCellStyle(sheet, "F"+r, "G"+r, moneyStyle)
		row++
	}

	row++
	for _, line := range totalLines(est.Totals) {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(sheet, "F"+r, line.label)
		f.SetCellStyle(sheet, "F"+r, "F"+r, labelStyle)
		f.SetCellValue(sheet, "G"+r, line.value)
		f.SetCellStyle(sheet, "G"+r, "G"+r, totalStyle)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

type totalLine struct {
	label string
	value float64
}

func totalLines(t rab.Totals) []totalLine {
	return []totalLine{
		{"Subtotal", t.Subtotal},
		{fmt.Sprintf("Overhead (%.0f%%)", rab.OverheadRate*100), t.Overhead},
		{fmt.Sprintf("Keuntungan (%.0f%%)", rab.ProfitRate*100), t.Profit},
		{fmt.Sprintf("PPN (%.0f%%)", rab.TaxRate*100), t.Tax},
		{"Total", t.GrandTotal},
	}
}

// sheetName strips characters Excel rejects in sheet names and caps the length at 31.
func sheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	name = strings.Trim(name, "'")
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	if name == "" {
		return defaultSheet
	}
	return name
}

// sanitizeExcelCell prefixes values that Excel would read as formulas.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
