package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fee-reconciliation-service/internal/models"
)

func discrepancyReport() *models.Report {
	return &models.Report{
		Summary: models.Summary{
			MatchedItems:            1,
			TotalVisaItems:          3,
			AmountReconciledDisplay: "88.00%",
			FeeReconciledDisplay:    "33.33%",
			TotalFinalAmountDisplay: "8,300.00",
			TotalVisaAmountDisplay:  "9,400.00",
		},
		Sheets: []models.SheetResult{
			{Name: "Card Fees", Rows: []models.MatchResult{
				{
					FeeType:               "Integrity Fee",
					CalculationMethod:     "per-txn",
					FinalAmountDisplay:    "8,300.00",
					VisaAmountDisplay:     "8,200.00",
					PercentageDiffDisplay: "+1.22%",
					DiffStatus:            models.DiffHigher,
				},
				{
					FeeType:            "Orphan Fee",
					FinalAmountDisplay: "30.00",
					VisaAmountDisplay:  "N/A",
					DiffStatus:         models.DiffMissing,
				},
				{
					FeeType:    "Service Fee",
					DiffStatus: models.DiffMatched,
				},
			}},
		},
	}
}

func TestAnalyze_NotConfigured(t *testing.T) {
	analyzer := NewRootCauseAnalyzer("", "gpt-3.5-turbo")

	assert.False(t, analyzer.Available())
	_, err := analyzer.Analyze(context.Background(), discrepancyReport())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestAnalyze_NoDiscrepancies(t *testing.T) {
	analyzer := NewRootCauseAnalyzer("test-key", "gpt-3.5-turbo")
	require.True(t, analyzer.Available())

	rep := &models.Report{
		Sheets: []models.SheetResult{
			{Name: "Fees", Rows: []models.MatchResult{
				{FeeType: "Integrity Fee", DiffStatus: models.DiffMatched},
			}},
		},
	}

	// A clean report short-circuits without calling the model.
	got, err := analyzer.Analyze(context.Background(), rep)
	require.NoError(t, err)
	assert.Equal(t, "No significant discrepancies found to analyze.", got)
}

func TestExtractDiscrepancies(t *testing.T) {
	discrepancies := extractDiscrepancies(discrepancyReport())

	require.Len(t, discrepancies, 2)
	assert.Equal(t, "Integrity Fee", discrepancies[0].feeType)
	assert.Equal(t, models.DiffHigher, discrepancies[0].diffStatus)
	assert.Equal(t, "Orphan Fee", discrepancies[1].feeType)
	assert.Equal(t, models.DiffMissing, discrepancies[1].diffStatus)
}

func TestBuildPrompt(t *testing.T) {
	rep := discrepancyReport()
	prompt := buildPrompt(rep, extractDiscrepancies(rep))

	assert.Contains(t, prompt, "RECONCILIATION SUMMARY:")
	assert.Contains(t, prompt, "- Amount Reconciled: 88.00%")
	assert.Contains(t, prompt, "1. Integrity Fee")
	assert.Contains(t, prompt, "- Difference: +1.22%")
	assert.Contains(t, prompt, "2. Orphan Fee")
	assert.Contains(t, prompt, "PART 1: FEE-BY-FEE ANALYSIS")
	assert.Contains(t, prompt, "PART 2: MISSING FEES ANALYSIS")
	assert.Contains(t, prompt, "PART 3: OVERALL PATTERNS")
	// Matched rows never reach the prompt.
	assert.NotContains(t, prompt, "Service Fee")
}
