package catalog

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// The flat text format joins fields with commas and never quotes them. A
// field containing a comma shifts the rest of its row; such rows usually
// fail the price check and are skipped on import.

var (
	materialHeader = []string{"Name", "Category", "Unit", "Price", "Supplier", "Status", "Created"}
	laborHeader    = []string{"Job Type", "Category", "Unit", "Price", "Skill Level", "Location", "Status", "Created"}
)

const minImportFields = 4

// ImportResult carries the rows accepted from a bulk file and how many were dropped.
type ImportResult[T any] struct {
	Rows    []T
	Skipped int
}

// ExportMaterialsCSV writes materials as comma-joined lines under a header row.
func ExportMaterialsCSV(w io.Writer, rows []MaterialRate) error {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(materialHeader, ","))
	for _, m := range rows {
		lines = append(lines, strings.Join([]string{
			m.Name,
			m.Category,
			m.Unit,
			strconv.FormatInt(m.UnitPrice, 10),
			m.Supplier,
			string(m.Status),
			createdDate(m.CreatedAt),
		}, ","))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	if err != nil {
		return fmt.Errorf("write materials csv: %w", err)
	}
	return nil
}

// ExportLaborCSV writes labor rates as comma-joined lines under a header row.
func ExportLaborCSV(w io.Writer, rows []LaborRate) error {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(laborHeader, ","))
	for _, l := range rows {
		lines = append(lines, strings.Join([]string{
			l.JobType,
			l.Category,
			l.Unit,
			strconv.FormatInt(l.UnitPrice, 10),
			string(l.SkillTier),
			l.Location,
			string(l.Status),
			createdDate(l.CreatedAt),
		}, ","))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	if err != nil {
		return fmt.Errorf("write labor csv: %w", err)
	}
	return nil
}

func createdDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// SplitCSV splits flat text into rows of trimmed fields with a plain comma
// split. The first line is treated as a header and dropped; blank lines are ignored.
func SplitCSV(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}

	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		rows = append(rows, fields)
	}
	return rows, nil
}

// ReadXLSXRows returns the data rows of the first sheet of a workbook, header dropped.
func ReadXLSXRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read xlsx sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	out := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		fields := make([]string, len(row))
		empty := true
		for i, v := range row {
			fields[i] = strings.TrimSpace(v)
			if fields[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		out = append(out, fields)
	}
	return out, nil
}

// ImportMaterialsCSV parses a flat material export. Bad rows are skipped.
func ImportMaterialsCSV(r io.Reader) (ImportResult[MaterialRate], error) {
	rows, err := SplitCSV(r)
	if err != nil {
		return ImportResult[MaterialRate]{}, err
	}
	return ParseMaterialRows(rows), nil
}

// ImportLaborCSV parses a flat labor export. Bad rows are skipped.
func ImportLaborCSV(r io.Reader) (ImportResult[LaborRate], error) {
	rows, err := SplitCSV(r)
	if err != nil {
		return ImportResult[LaborRate]{}, err
	}
	return ParseLaborRows(rows), nil
}

// ParseMaterialRows maps field rows in export column order to materials.
func ParseMaterialRows(rows [][]string) ImportResult[MaterialRate] {
	result := ImportResult[MaterialRate]{Rows: make([]MaterialRate, 0, len(rows))}
	for _, fields := range rows {
		if len(fields) < minImportFields {
			result.Skipped++
			continue
		}
		price, ok := parsePrice(fields[3])
		if !ok {
			result.Skipped++
			continue
		}
		status, ok := ParseStatus(field(fields, 5))
		if !ok {
			result.Skipped++
			continue
		}

		m := MaterialRate{
			Name:      fields[0],
			Category:  fields[1],
			Unit:      fields[2],
			UnitPrice: price,
			Supplier:  field(fields, 4),
			Status:    status,
		}
		if ValidateMaterial(m) != nil {
			result.Skipped++
			continue
		}
		result.Rows = append(result.Rows, m)
	}
	return result
}

// ParseLaborRows maps field rows in export column order to labor rates.
func ParseLaborRows(rows [][]string) ImportResult[LaborRate] {
	result := ImportResult[LaborRate]{Rows: make([]LaborRate, 0, len(rows))}
	for _, fields := range rows {
		if len(fields) < minImportFields {
			result.Skipped++
			continue
		}
		price, ok := parsePrice(fields[3])
		if !ok {
			result.Skipped++
			continue
		}
		tier, ok := ParseSkillTier(field(fields, 4))
		if !ok {
			result.Skipped++
			continue
		}
		status, ok := ParseStatus(field(fields, 6))
		if !ok {
			result.Skipped++
			continue
		}

		l := LaborRate{
			JobType:   fields[0],
			Category:  fields[1],
			Unit:      fields[2],
			UnitPrice: price,
			SkillTier: tier,
			Location:  field(fields, 5),
			Status:    status,
		}
		if ValidateLabor(l) != nil {
			result.Skipped++
			continue
		}
		result.Rows = append(result.Rows, l)
	}
	return result
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

func parsePrice(raw string) (int64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return int64(math.Round(v)), true
}
