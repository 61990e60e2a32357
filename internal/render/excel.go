package render

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"fee-reconciliation-service/internal/models"
)

const (
	summarySheetName  = "Summary"
	cardSheetName     = "Card Issuance Summary"
	cardDetailName    = "Card Issuance Detail"
	overviewSheetName = "Transaction Overview"
	warningsSheetName = "Warnings"

	// Excel caps sheet names at 31 characters.
	maxSheetNameLen = 31
)

var feeDetailHeader = []interface{}{
	"Fee Type", "Rate Chart", "Calculation Method", "Calculated Amount",
	"Exchange Rate", "Final Amount", "VISA Amount", "Percentage Difference", "Status",
}

// ReportWorkbook renders the full reconciliation report as an Excel
// workbook: summary metrics, optional card and transaction sections, one
// detail sheet per analyzed fee sheet, and the warnings list.
func ReportWorkbook(rep *models.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Size: 12},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F4E78"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSummarySheet(f, rep, headerStyle); err != nil {
		return nil, err
	}
	if rep.Card != nil {
		if err := writeCardSheets(f, rep.Card, headerStyle); err != nil {
			return nil, err
		}
	}
	if rep.Transactions != nil {
		if err := writeOverviewSheet(f, rep.Transactions, headerStyle); err != nil {
			return nil, err
		}
	}
	for _, sheet := range rep.Sheets {
		if err := writeFeeDetailSheet(f, sheet, headerStyle); err != nil {
			return nil, err
		}
	}
	if len(rep.Warnings) > 0 {
		if err := writeWarningsSheet(f, rep.Warnings, headerStyle); err != nil {
			return nil, err
		}
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

func writeSummarySheet(f *excelize.File, rep *models.Report, headerStyle int) error {
	if _, err := f.NewSheet(summarySheetName); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Amount Reconciled", rep.Summary.AmountReconciledDisplay},
		{"Fee Reconciled", rep.Summary.FeeReconciledDisplay},
		{"Items Reconciled", fmt.Sprintf("%d/%d", rep.Summary.MatchedItems, rep.Summary.TotalVisaItems)},
		{"Amount Match Percentage", rep.Summary.AmountMatchDisplay},
		{"Calculated Total", rep.Summary.TotalFinalAmountDisplay},
		{"VISA Invoice Total", rep.Summary.TotalVisaAmountDisplay},
		{"Total Fee Mappings", rep.Summary.TotalMappings},
		{"Sheets Analyzed", rep.Summary.SheetCount},
		{"Total VISA Items", rep.Summary.TotalVisaItems},
		{"Total Calculated Items", rep.Summary.TotalCalculatedItems},
		{"Matched Items", rep.Summary.MatchedItems},
		{"Exact Match Items", rep.Summary.ExactMatchItems},
	}
	return writeRows(f, summarySheetName, rows, headerStyle)
}

func writeCardSheets(f *excelize.File, card *models.CardSection, headerStyle int) error {
	if _, err := f.NewSheet(cardSheetName); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Total Cards Issued"},
		{card.TotalCards},
	}
	if err := writeRows(f, cardSheetName, rows, headerStyle); err != nil {
		return err
	}

	if len(card.MonthlyData) == 0 {
		return nil
	}
	if _, err := f.NewSheet(cardDetailName); err != nil {
		return err
	}
	detail := [][]interface{}{{"Period", "Cards Issued"}}
	for _, entry := range card.MonthlyData {
		detail = append(detail, []interface{}{entry.Period, entry.Cards})
	}
	return writeRows(f, cardDetailName, detail, headerStyle)
}

func writeOverviewSheet(f *excelize.File, section *models.TransactionSection, headerStyle int) error {
	if _, err := f.NewSheet(overviewSheetName); err != nil {
		return err
	}
	rows := [][]interface{}{{"Type", "Amount (USD)", "Volume"}}
	for _, entry := range section.Entries {
		rows = append(rows, []interface{}{entry.Label, entry.Amount.StringFixed(2), entry.Volume})
	}
	return writeRows(f, overviewSheetName, rows, headerStyle)
}

func writeFeeDetailSheet(f *excelize.File, sheet models.SheetResult, headerStyle int) error {
	name := sheet.Name
	if len(name) > maxSheetNameLen {
		name = name[:maxSheetNameLen]
	}
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	rows := [][]interface{}{feeDetailHeader}
	for _, row := range sheet.Rows {
		exchangeRate := "N/A"
		if row.ExchangeRate.Valid {
			exchangeRate = row.ExchangeRate.Decimal.String()
		}
		rows = append(rows, []interface{}{
			row.FeeType,
			row.RateChart,
			row.CalculationMethod,
			row.CalculatedAmountDisplay,
			exchangeRate,
			row.FinalAmountDisplay,
			row.VisaAmountDisplay,
			row.PercentageDiffDisplay,
			row.DiffStatus,
		})
	}
	return writeRows(f, name, rows, headerStyle)
}

func writeWarningsSheet(f *excelize.File, warnings []string, headerStyle int) error {
	if _, err := f.NewSheet(warningsSheetName); err != nil {
		return err
	}
	rows := [][]interface{}{{"Warnings"}}
	for _, w := range warnings {
		rows = append(rows, []interface{}{w})
	}
	return writeRows(f, warningsSheetName, rows, headerStyle)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell := "A" + strconv.Itoa(i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}

	if len(rows) > 0 {
		last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return err
		}
	}
	return nil
}
