package render

import (
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"fee-reconciliation-service/internal/models"
)

// BatchPDF renders the batch processing report: an executive summary
// followed by per-transaction metrics, one transaction per page.
func BatchPDF(results []models.TransactionResult, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Batch Reconciliation Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(31, 78, 120)
	pdf.CellFormat(0, 14, "Batch Reconciliation Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	writeExecutiveSummary(pdf, results)

	for _, result := range results {
		pdf.AddPage()
		writeTransactionSection(pdf, result)
	}

	return pdf.OutputFileAndClose(path)
}

func writeExecutiveSummary(pdf *fpdf.Fpdf, results []models.TransactionResult) {
	var successful, failed, alerts int
	for _, r := range results {
		switch r.Status {
		case models.RunStatusCompleted:
			successful++
		case models.RunStatusFailed:
			failed++
		}
		if r.EmailSent {
			alerts++
		}
	}

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(31, 78, 120)
	pdf.CellFormat(0, 10, "Executive Summary", "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	metricsTable(pdf, [][2]string{
		{"Total Transactions", fmt.Sprintf("%d", len(results))},
		{"Successful", fmt.Sprintf("%d", successful)},
		{"Failed", fmt.Sprintf("%d", failed)},
		{"Email Alerts Sent", fmt.Sprintf("%d", alerts)},
	})
}

func writeTransactionSection(pdf *fpdf.Fpdf, result models.TransactionResult) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(31, 78, 120)
	pdf.CellFormat(0, 10, fmt.Sprintf("Transaction: %s", result.TransactionName), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if result.Status == models.RunStatusFailed {
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(0, 8, "Status: FAILED", "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(0, 6, fmt.Sprintf("Error: %s", result.Error), "", "L", false)
		return
	}

	if result.EmailSent {
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(0, 8, "Status: SUCCESS (Email Alert Sent)", "", 1, "L", false, 0, "")
	} else {
		pdf.SetTextColor(0, 130, 0)
		pdf.CellFormat(0, 8, "Status: SUCCESS", "", 1, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)

	if result.Report == nil {
		return
	}
	summary := result.Report.Summary
	metricsTable(pdf, [][2]string{
		{"Amount Reconciled", summary.AmountReconciledDisplay},
		{"Fee Reconciled", summary.FeeReconciledDisplay},
		{"Items Reconciled", fmt.Sprintf("%d/%d", summary.MatchedItems, summary.TotalVisaItems)},
		{"Amount Match %", summary.AmountMatchDisplay},
		{"Calculated Total", summary.TotalFinalAmountDisplay},
		{"VISA Total", summary.TotalVisaAmountDisplay},
		{"Fee Mappings", fmt.Sprintf("%d", summary.TotalMappings)},
	})
}

func metricsTable(pdf *fpdf.Fpdf, rows [][2]string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(31, 78, 120)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(70, 8, "Metric", "1", 0, "L", true, 0, "")
	pdf.CellFormat(60, 8, "Value", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range rows {
		pdf.CellFormat(70, 8, row[0], "1", 0, "L", true, 0, "")
		pdf.CellFormat(60, 8, row[1], "1", 1, "L", true, 0, "")
	}
	pdf.Ln(4)
}
