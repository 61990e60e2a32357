package extract

import (
	"fee-reconciliation-service/internal/models"
	"fee-reconciliation-service/internal/tabular"
)

var invoiceAmountColumns = []string{"visa amount", "invoice amount", "billing amount", "reported amount", "amount"}

// InvoiceLineExtractor turns the external invoice workbook into InvoiceLine
// values. It applies the same row resilience and duplicate-key policy as the
// fee extractor so that the matcher's invoice map has unique keys.
type InvoiceLineExtractor struct {
	duplicatePolicy string
}

func NewInvoiceLineExtractor(duplicatePolicy string) *InvoiceLineExtractor {
	if duplicatePolicy != models.DuplicateSum {
		duplicatePolicy = models.DuplicateLastWins
	}
	return &InvoiceLineExtractor{duplicatePolicy: duplicatePolicy}
}

// ExtractWorkbook concatenates the invoice lines of every sheet carrying a
// fee type column, in encounter order.
func (e *InvoiceLineExtractor) ExtractWorkbook(wb *tabular.Workbook, warnings *models.WarningList) []models.InvoiceLine {
	var lines []models.InvoiceLine
	if wb == nil {
		return lines
	}
	position := make(map[models.LineKey]int)

	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		feeCol := sheet.ColumnIndex(feeTypeColumns...)
		if feeCol < 0 {
			continue
		}
		rateCol := sheet.ColumnIndex(rateChartColumns...)
		amountCol := sheet.ColumnIndex(invoiceAmountColumns...)

		for rowNum, row := range sheet.Rows {
			feeType := sheet.Cell(row, feeCol)
			if feeType == "" {
				if !isEmptyRow(row) {
					warnings.Addf("invoice sheet %q row %d: no fee type, row skipped", sheet.Name, rowNum+2)
				}
				continue
			}

			amount, ok := parseAmount(sheet.Cell(row, amountCol))
			if !ok {
				warnings.Addf("invoice sheet %q row %d: non-numeric amount %q for fee %q, coerced to zero",
					sheet.Name, rowNum+2, sheet.Cell(row, amountCol), feeType)
			}

			line := models.InvoiceLine{
				FeeType:    feeType,
				RateChart:  sheet.Cell(row, rateCol),
				VisaAmount: amount,
			}

			if idx, seen := position[line.Key()]; seen {
				switch e.duplicatePolicy {
				case models.DuplicateSum:
					lines[idx].VisaAmount = lines[idx].VisaAmount.Add(line.VisaAmount)
					warnings.Addf("invoice sheet %q row %d: duplicate key (%s, %s), amounts summed",
						sheet.Name, rowNum+2, line.FeeType, line.RateChart)
				default:
					lines[idx] = line
					warnings.Addf("invoice sheet %q row %d: duplicate key (%s, %s), earlier row overwritten",
						sheet.Name, rowNum+2, line.FeeType, line.RateChart)
				}
				continue
			}

			position[line.Key()] = len(lines)
			lines = append(lines, line)
		}
	}

	return lines
}
