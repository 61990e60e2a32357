package extract

import (
	"strings"

	"fee-reconciliation-service/internal/models"
	"fee-reconciliation-service/internal/tabular"
)

// Header name candidates recognized in the calculated-fee source.
var (
	feeTypeColumns     = []string{"fee type", "fee description", "fee name", "fee"}
	rateChartColumns   = []string{"rate chart", "rate schedule", "rate card"}
	methodColumns      = []string{"calculation method", "calc method", "method"}
	amountColumns      = []string{"calculated amount", "raw amount", "amount"}
	currencyColumns    = []string{"source currency", "currency"}
	reservedSheetNames = []string{"fx rates", "rates", "warnings"}
)

// FeeLineExtractor turns calculated-fee sheets into FeeLine values. Rows
// without a recognizable fee type are skipped with a warning; malformed
// amounts are coerced to zero with a warning. Duplicate (fee type, rate
// chart) keys within one sheet are resolved by the configured policy.
type FeeLineExtractor struct {
	duplicatePolicy string
}

func NewFeeLineExtractor(duplicatePolicy string) *FeeLineExtractor {
	if duplicatePolicy != models.DuplicateSum {
		duplicatePolicy = models.DuplicateLastWins
	}
	return &FeeLineExtractor{duplicatePolicy: duplicatePolicy}
}

// ExtractWorkbook extracts every fee sheet of the workbook in encounter
// order, skipping reserved auxiliary sheets and sheets without a fee type
// column.
func (e *FeeLineExtractor) ExtractWorkbook(wb *tabular.Workbook, warnings *models.WarningList) []models.FeeSheet {
	var sheets []models.FeeSheet
	if wb == nil {
		return sheets
	}

	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		if isReservedSheet(sheet.Name) {
			continue
		}
		if sheet.ColumnIndex(feeTypeColumns...) < 0 {
			continue
		}
		sheets = append(sheets, models.FeeSheet{
			Name:  sheet.Name,
			Lines: e.ExtractSheet(sheet, warnings),
		})
	}
	return sheets
}

// ExtractSheet extracts the fee lines of one sheet, preserving row order.
func (e *FeeLineExtractor) ExtractSheet(sheet *tabular.Sheet, warnings *models.WarningList) []models.FeeLine {
	feeCol := sheet.ColumnIndex(feeTypeColumns...)
	rateCol := sheet.ColumnIndex(rateChartColumns...)
	methodCol := sheet.ColumnIndex(methodColumns...)
	amountCol := sheet.ColumnIndex(amountColumns...)
	currencyCol := sheet.ColumnIndex(currencyColumns...)

	var lines []models.FeeLine
	position := make(map[models.LineKey]int)

	for rowNum, row := range sheet.Rows {
		feeType := sheet.Cell(row, feeCol)
		if feeType == "" {
			if !isEmptyRow(row) {
				warnings.Addf("sheet %q row %d: no fee type, row skipped", sheet.Name, rowNum+2)
			}
			continue
		}

		amount, ok := parseAmount(sheet.Cell(row, amountCol))
		if !ok {
			warnings.Addf("sheet %q row %d: non-numeric amount %q for fee %q, coerced to zero",
				sheet.Name, rowNum+2, sheet.Cell(row, amountCol), feeType)
		}

		line := models.FeeLine{
			FeeType:           feeType,
			RateChart:         sheet.Cell(row, rateCol),
			CalculationMethod: sheet.Cell(row, methodCol),
			RawAmount:         amount,
			Currency:          strings.ToUpper(sheet.Cell(row, currencyCol)),
			FinalAmount:       amount,
		}

		if idx, seen := position[line.Key()]; seen {
			switch e.duplicatePolicy {
			case models.DuplicateSum:
				lines[idx].RawAmount = lines[idx].RawAmount.Add(line.RawAmount)
				lines[idx].FinalAmount = lines[idx].RawAmount
				warnings.Addf("sheet %q row %d: duplicate key (%s, %s), amounts summed",
					sheet.Name, rowNum+2, line.FeeType, line.RateChart)
			default:
				lines[idx] = line
				warnings.Addf("sheet %q row %d: duplicate key (%s, %s), earlier row overwritten",
					sheet.Name, rowNum+2, line.FeeType, line.RateChart)
			}
			continue
		}

		position[line.Key()] = len(lines)
		lines = append(lines, line)
	}

	return lines
}

func isReservedSheet(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, reserved := range reservedSheetNames {
		if lower == reserved {
			return true
		}
	}
	return false
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
