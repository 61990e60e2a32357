package tabular

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is one named grid of string cells. The first row of the source sheet
// is treated as the header; Rows holds the data rows padded to header width.
type Sheet struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Workbook is the in-memory form of one spreadsheet file.
type Workbook struct {
	Sheets []Sheet
}

// ColumnIndex returns the index of the first header matching any of the given
// names. Matching is case-insensitive and ignores surrounding whitespace and
// underscores. Returns -1 when no header matches.
func (s *Sheet) ColumnIndex(names ...string) int {
	for i, col := range s.Columns {
		normalized := normalizeHeader(col)
		for _, name := range names {
			if normalized == normalizeHeader(name) {
				return i
			}
		}
	}
	return -1
}

// Cell returns the value of row at col, or "" when the column is absent.
func (s *Sheet) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Sheet returns the sheet with the given name, nil if the workbook has none.
func (w *Workbook) Sheet(name string) *Sheet {
	if w == nil {
		return nil
	}
	for i := range w.Sheets {
		if strings.EqualFold(w.Sheets[i].Name, name) {
			return &w.Sheets[i]
		}
	}
	return nil
}

// OpenWorkbook loads an .xlsx file into memory. Empty sheets are kept with
// zero rows so callers can distinguish an empty sheet from a missing one.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s of %s: %w", name, path, err)
		}

		sheet := Sheet{Name: name}
		if len(rows) > 0 {
			sheet.Columns = trimAll(rows[0])
			for _, row := range rows[1:] {
				sheet.Rows = append(sheet.Rows, padRow(row, len(sheet.Columns)))
			}
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}

	return wb, nil
}

// OpenOptional loads a workbook when path is non-empty and the file exists.
// A missing optional source yields a nil workbook without error.
func OpenOptional(path string) (*Workbook, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return OpenWorkbook(path)
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

func trimAll(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

// padRow widens a row to the header width; excelize trims trailing empty cells.
func padRow(row []string, width int) []string {
	out := make([]string, width)
	for i := 0; i < width && i < len(row); i++ {
		out[i] = strings.TrimSpace(row[i])
	}
	return out
}
