package report

import (
	"fee-reconciliation-service/internal/models"
)

// Assemble composes the final report: sheets in encounter order, the
// aggregate summary, the optional auxiliary sections, and all warnings in
// emission order. Display strings are derived here; no new computation
// happens beyond formatting.
func Assemble(
	sheets []models.SheetResult,
	summary models.Summary,
	card *models.CardSection,
	transactions *models.TransactionSection,
	warnings *models.WarningList,
) *models.Report {
	for si := range sheets {
		for ri := range sheets[si].Rows {
			decorateRow(&sheets[si].Rows[ri])
		}
	}

	summary.TotalFinalAmountDisplay = FormatAmount(summary.TotalFinalAmount)
	summary.TotalVisaAmountDisplay = FormatAmount(summary.TotalVisaAmount)
	summary.AmountReconciledDisplay = FormatPercent(summary.AmountReconciledPercentage)
	summary.FeeReconciledDisplay = FormatPercent(summary.FeeReconciledPercentage)
	summary.AmountMatchDisplay = FormatPercent(summary.AmountMatchPercentage)

	return &models.Report{
		Summary:      summary,
		Sheets:       sheets,
		Card:         card,
		Transactions: transactions,
		Warnings:     warnings.Entries(),
	}
}

func decorateRow(row *models.MatchResult) {
	row.CalculatedAmountDisplay = FormatAmount(row.RawAmount)
	row.FinalAmountDisplay = FormatAmount(row.FinalAmount)

	if row.VisaAmount.Valid {
		row.VisaAmountDisplay = FormatAmount(row.VisaAmount.Decimal)
	} else {
		row.VisaAmountDisplay = "N/A"
	}

	if row.PercentageDiff.Valid {
		row.PercentageDiffDisplay = FormatSignedPercent(row.PercentageDiff.Decimal)
	} else {
		row.PercentageDiffDisplay = "N/A"
	}
}
