package matching

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fee-reconciliation-service/internal/models"
)

func feeSheet(name string, lines ...models.FeeLine) models.FeeSheet {
	return models.FeeSheet{Name: name, Lines: lines}
}

func feeLine(feeType, rateChart string, finalAmount float64) models.FeeLine {
	amount := decimal.NewFromFloat(finalAmount)
	return models.FeeLine{
		FeeType:     feeType,
		RateChart:   rateChart,
		RawAmount:   amount,
		FinalAmount: amount,
	}
}

func invoiceLine(feeType, rateChart string, amount float64) models.InvoiceLine {
	return models.InvoiceLine{
		FeeType:    feeType,
		RateChart:  rateChart,
		VisaAmount: decimal.NewFromFloat(amount),
	}
}

func TestEngine_ToleranceBoundary(t *testing.T) {
	tests := []struct {
		name        string
		finalAmount float64
		visaAmount  float64
		wantStatus  string
	}{
		{"just above tolerance is higher", 100, 99.00, models.DiffHigher},
		{"just below tolerance is matched", 100, 99.01, models.DiffMatched},
		{"exact match", 100, 100, models.DiffMatched},
		{"under invoice beyond tolerance is lower", 97, 100, models.DiffLower},
		{"under invoice within tolerance is matched", 99.5, 100, models.DiffMatched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(DefaultTolerancePercent)
			engine.SetData(
				[]models.FeeSheet{feeSheet("Fees", feeLine("Integrity Fee", "A", tt.finalAmount))},
				[]models.InvoiceLine{invoiceLine("Integrity Fee", "A", tt.visaAmount)},
			)

			sheets, unmatched, err := engine.ProcessMatches()
			require.NoError(t, err)
			require.Len(t, sheets, 1)
			require.Len(t, sheets[0].Rows, 1)
			assert.Empty(t, unmatched)

			row := sheets[0].Rows[0]
			assert.Equal(t, tt.wantStatus, row.DiffStatus)
			assert.True(t, row.VisaAmount.Valid)
			assert.True(t, row.PercentageDiff.Valid)
		})
	}
}

func TestEngine_ZeroHandling(t *testing.T) {
	t.Run("both zero is matched with zero diff", func(t *testing.T) {
		engine := NewEngine(DefaultTolerancePercent)
		engine.SetData(
			[]models.FeeSheet{feeSheet("Fees", feeLine("Service Fee", "B", 0))},
			[]models.InvoiceLine{invoiceLine("Service Fee", "B", 0)},
		)

		sheets, _, err := engine.ProcessMatches()
		require.NoError(t, err)

		row := sheets[0].Rows[0]
		assert.Equal(t, models.DiffMatched, row.DiffStatus)
		require.True(t, row.PercentageDiff.Valid)
		assert.True(t, row.PercentageDiff.Decimal.IsZero())
	})

	t.Run("zero invoice with positive amount is capped higher", func(t *testing.T) {
		engine := NewEngine(DefaultTolerancePercent)
		engine.SetData(
			[]models.FeeSheet{feeSheet("Fees", feeLine("Service Fee", "B", 50))},
			[]models.InvoiceLine{invoiceLine("Service Fee", "B", 0)},
		)

		sheets, _, err := engine.ProcessMatches()
		require.NoError(t, err)

		row := sheets[0].Rows[0]
		assert.Equal(t, models.DiffHigher, row.DiffStatus)
		require.True(t, row.PercentageDiff.Valid)
		assert.True(t, row.PercentageDiff.Decimal.Equal(PercentageDiffCap))
	})

	t.Run("zero invoice with negative amount is capped lower", func(t *testing.T) {
		engine := NewEngine(DefaultTolerancePercent)
		engine.SetData(
			[]models.FeeSheet{feeSheet("Fees", feeLine("Credit Adjustment", "B", -50))},
			[]models.InvoiceLine{invoiceLine("Credit Adjustment", "B", 0)},
		)

		sheets, _, err := engine.ProcessMatches()
		require.NoError(t, err)

		row := sheets[0].Rows[0]
		assert.Equal(t, models.DiffLower, row.DiffStatus)
		require.True(t, row.PercentageDiff.Valid)
		assert.True(t, row.PercentageDiff.Decimal.Equal(PercentageDiffCap.Neg()))
	})
}

func TestEngine_MissingAndUnmatchedAsymmetry(t *testing.T) {
	engine := NewEngine(DefaultTolerancePercent)
	engine.SetData(
		[]models.FeeSheet{feeSheet("Fees", feeLine("IntegrityFee", "A", 100))},
		[]models.InvoiceLine{invoiceLine("ServiceFee", "B", 200)},
	)

	sheets, unmatched, err := engine.ProcessMatches()
	require.NoError(t, err)

	// Calculated-but-not-invoiced yields a missing result.
	require.Len(t, sheets[0].Rows, 1)
	row := sheets[0].Rows[0]
	assert.Equal(t, models.DiffMissing, row.DiffStatus)
	assert.False(t, row.VisaAmount.Valid)
	assert.False(t, row.PercentageDiff.Valid)

	// Invoiced-but-not-calculated yields no result, only an unmatched line.
	require.Len(t, unmatched, 1)
	assert.Equal(t, "ServiceFee", unmatched[0].FeeType)
}

func TestEngine_ClassificationTotality(t *testing.T) {
	engine := NewEngine(DefaultTolerancePercent)
	engine.SetData(
		[]models.FeeSheet{feeSheet("Fees",
			feeLine("A", "1", 100),
			feeLine("B", "1", 100),
			feeLine("C", "1", 100),
			feeLine("D", "1", 100),
		)},
		[]models.InvoiceLine{
			invoiceLine("A", "1", 100),
			invoiceLine("B", "1", 50),
			invoiceLine("C", "1", 200),
		},
	)

	sheets, _, err := engine.ProcessMatches()
	require.NoError(t, err)

	statuses := map[string]bool{
		models.DiffMatched: true,
		models.DiffHigher:  true,
		models.DiffLower:   true,
		models.DiffMissing: true,
	}
	for _, row := range sheets[0].Rows {
		assert.True(t, statuses[row.DiffStatus], "unexpected status %q", row.DiffStatus)
		assert.Equal(t, row.DiffStatus == models.DiffMissing, !row.VisaAmount.Valid)
	}
}

func TestEngine_RateChartDistinguishesKeys(t *testing.T) {
	engine := NewEngine(DefaultTolerancePercent)
	engine.SetData(
		[]models.FeeSheet{feeSheet("Fees",
			feeLine("Integrity Fee", "Domestic", 100),
			feeLine("Integrity Fee", "International", 300),
		)},
		[]models.InvoiceLine{
			invoiceLine("Integrity Fee", "Domestic", 100),
			invoiceLine("Integrity Fee", "International", 400),
		},
	)

	sheets, unmatched, err := engine.ProcessMatches()
	require.NoError(t, err)
	assert.Empty(t, unmatched)
	assert.Equal(t, models.DiffMatched, sheets[0].Rows[0].DiffStatus)
	assert.Equal(t, models.DiffLower, sheets[0].Rows[1].DiffStatus)
}

func TestEngine_Idempotence(t *testing.T) {
	engine := NewEngine(DefaultTolerancePercent)
	engine.SetData(
		[]models.FeeSheet{
			feeSheet("Sheet A", feeLine("A", "1", 100), feeLine("B", "2", 50)),
			feeSheet("Sheet B", feeLine("C", "3", 75)),
		},
		[]models.InvoiceLine{
			invoiceLine("A", "1", 100),
			invoiceLine("Z", "9", 10),
		},
	)

	first, firstUnmatched, err := engine.ProcessMatches()
	require.NoError(t, err)
	second, secondUnmatched, err := engine.ProcessMatches()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstUnmatched, secondUnmatched)
}

func TestEngine_NilFeeSheetsIsContractViolation(t *testing.T) {
	engine := NewEngine(DefaultTolerancePercent)
	engine.SetData(nil, nil)

	_, _, err := engine.ProcessMatches()
	assert.ErrorIs(t, err, ErrNilFeeSheets)
}

func TestEngine_EmptyInputsAreNotAnError(t *testing.T) {
	engine := NewEngine(DefaultTolerancePercent)
	engine.SetData([]models.FeeSheet{}, nil)

	sheets, unmatched, err := engine.ProcessMatches()
	require.NoError(t, err)
	assert.Empty(t, sheets)
	assert.Empty(t, unmatched)
}
