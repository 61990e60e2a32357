package tabular

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheets map[string][][]string) string {
	t.Helper()

	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestOpenWorkbook(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"Card Fees": {
			{"Fee Type", "Rate Chart", "Amount"},
			{"Integrity Fee", "A", "100"},
			{"Service Fee", "B", ""},
		},
	})

	wb, err := OpenWorkbook(path)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)

	sheet := wb.Sheet("Card Fees")
	require.NotNil(t, sheet)
	assert.Equal(t, []string{"Fee Type", "Rate Chart", "Amount"}, sheet.Columns)
	require.Len(t, sheet.Rows, 2)

	// Trailing empty cells come back padded to header width.
	assert.Len(t, sheet.Rows[1], 3)
	assert.Equal(t, "", sheet.Cell(sheet.Rows[1], 2))
}

func TestOpenWorkbook_MissingFile(t *testing.T) {
	_, err := OpenWorkbook(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}

func TestOpenOptional(t *testing.T) {
	wb, err := OpenOptional("")
	require.NoError(t, err)
	assert.Nil(t, wb)

	wb, err = OpenOptional(filepath.Join(t.TempDir(), "absent.xlsx"))
	require.NoError(t, err)
	assert.Nil(t, wb)

	path := writeWorkbook(t, map[string][][]string{
		"Invoice": {{"Fee Type", "Visa Amount"}, {"Integrity Fee", "8200"}},
	})
	wb, err = OpenOptional(path)
	require.NoError(t, err)
	require.NotNil(t, wb)
	assert.NotNil(t, wb.Sheet("Invoice"))
}

func TestSheet_ColumnIndex(t *testing.T) {
	sheet := &Sheet{Columns: []string{" Fee_Type ", "RATE CHART", "Visa  Amount"}}

	assert.Equal(t, 0, sheet.ColumnIndex("fee type"))
	assert.Equal(t, 1, sheet.ColumnIndex("rate chart"))
	assert.Equal(t, 2, sheet.ColumnIndex("visa amount"))
	assert.Equal(t, -1, sheet.ColumnIndex("currency"))
	// First name that matches wins over later candidates.
	assert.Equal(t, 0, sheet.ColumnIndex("fee type", "rate chart"))
}

func TestSheet_Cell(t *testing.T) {
	sheet := &Sheet{}
	row := []string{" a ", "b"}

	assert.Equal(t, "a", sheet.Cell(row, 0))
	assert.Equal(t, "", sheet.Cell(row, -1))
	assert.Equal(t, "", sheet.Cell(row, 5))
}

func TestWorkbook_SheetIsCaseInsensitive(t *testing.T) {
	wb := &Workbook{Sheets: []Sheet{{Name: "FX Rates"}}}

	assert.NotNil(t, wb.Sheet("fx rates"))
	assert.Nil(t, wb.Sheet("warnings"))

	var nilWb *Workbook
	assert.Nil(t, nilWb.Sheet("anything"))
}
