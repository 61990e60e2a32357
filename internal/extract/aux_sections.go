package extract

import (
	"github.com/shopspring/decimal"

	"fee-reconciliation-service/internal/models"
	"fee-reconciliation-service/internal/tabular"
)

var (
	periodColumns = []string{"period", "month", "billing period"}
	cardsColumns  = []string{"cards issued", "cards", "card count", "count"}
	volumeColumns = []string{"volume", "transaction count", "count"}
	txnAmtColumns = []string{"amount (usd)", "amount", "transaction amount"}
)

// ExtractCardSection builds the optional card issuance section from its
// workbook. Returns nil when the source is absent or carries no usable rows.
func ExtractCardSection(wb *tabular.Workbook, warnings *models.WarningList) *models.CardSection {
	if wb == nil {
		return nil
	}

	section := &models.CardSection{}
	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		periodCol := sheet.ColumnIndex(periodColumns...)
		cardsCol := sheet.ColumnIndex(cardsColumns...)
		if periodCol < 0 || cardsCol < 0 {
			continue
		}

		for rowNum, row := range sheet.Rows {
			period := sheet.Cell(row, periodCol)
			if period == "" {
				continue
			}
			cards, ok := parseCount(sheet.Cell(row, cardsCol))
			if !ok {
				warnings.Addf("card sheet %q row %d: non-numeric card count %q, coerced to zero",
					sheet.Name, rowNum+2, sheet.Cell(row, cardsCol))
			}
			section.MonthlyData = append(section.MonthlyData, models.CardMonthly{Period: period, Cards: cards})
			section.TotalCards += cards
		}
	}

	if len(section.MonthlyData) == 0 {
		return nil
	}
	return section
}

// ExtractTransactionEntry rolls one transaction-volume workbook into a single
// labeled overview entry. Returns nil when the source is absent or empty.
func ExtractTransactionEntry(wb *tabular.Workbook, label string, warnings *models.WarningList) *models.TransactionEntry {
	if wb == nil {
		return nil
	}

	entry := models.TransactionEntry{Label: label, Amount: decimal.Zero}
	found := false

	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		amountCol := sheet.ColumnIndex(txnAmtColumns...)
		volumeCol := sheet.ColumnIndex(volumeColumns...)
		if amountCol < 0 && volumeCol < 0 {
			continue
		}

		for rowNum, row := range sheet.Rows {
			if isEmptyRow(row) {
				continue
			}
			found = true
			if amountCol >= 0 {
				amount, ok := parseAmount(sheet.Cell(row, amountCol))
				if !ok {
					warnings.Addf("%s sheet %q row %d: non-numeric amount %q, coerced to zero",
						label, sheet.Name, rowNum+2, sheet.Cell(row, amountCol))
				}
				entry.Amount = entry.Amount.Add(amount)
			}
			if volumeCol >= 0 {
				volume, ok := parseCount(sheet.Cell(row, volumeCol))
				if !ok {
					warnings.Addf("%s sheet %q row %d: non-numeric volume %q, coerced to zero",
						label, sheet.Name, rowNum+2, sheet.Cell(row, volumeCol))
				}
				entry.Volume += volume
			}
		}
	}

	if !found {
		return nil
	}
	return &entry
}
