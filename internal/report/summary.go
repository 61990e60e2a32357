package report

import (
	"github.com/shopspring/decimal"

	"fee-reconciliation-service/internal/models"
)

var (
	hundred = decimal.NewFromInt(100)

	// epsilon guards the reconciled-percentage denominator when the invoice
	// total is zero.
	epsilon = decimal.New(1, -2)
)

// Aggregate rolls per-line match results into the report summary. The
// summary is recomputed fresh on every call; nothing is maintained
// incrementally. Percentage fields stay unrounded here so that downstream
// threshold decisions never depend on display rounding.
func Aggregate(sheets []models.SheetResult, unmatchedInvoiceCount int) models.Summary {
	summary := models.Summary{
		TotalFinalAmount: decimal.Zero,
		TotalVisaAmount:  decimal.Zero,
		SheetCount:       len(sheets),
	}

	for _, sheet := range sheets {
		for _, row := range sheet.Rows {
			summary.TotalCalculatedItems++
			summary.TotalFinalAmount = summary.TotalFinalAmount.Add(row.FinalAmount)

			if row.VisaAmount.Valid {
				summary.TotalMappings++
				summary.TotalVisaItems++
				summary.TotalVisaAmount = summary.TotalVisaAmount.Add(row.VisaAmount.Decimal)
				if row.FinalAmount.Equal(row.VisaAmount.Decimal) {
					summary.ExactMatchItems++
				}
			}
			if row.DiffStatus == models.DiffMatched {
				summary.MatchedItems++
			}
		}
	}

	summary.TotalVisaItems += unmatchedInvoiceCount

	summary.AmountReconciledPercentage = amountReconciled(summary.TotalFinalAmount, summary.TotalVisaAmount)
	summary.FeeReconciledPercentage = feeReconciled(summary.MatchedItems, summary.TotalVisaItems)
	summary.AmountMatchPercentage = amountMatch(summary.TotalFinalAmount, summary.TotalVisaAmount)

	return summary
}

// amountReconciled = 100 * (1 - |final - visa| / max(visa, epsilon)),
// clamped to [0, 100] regardless of divergence magnitude.
func amountReconciled(totalFinal, totalVisa decimal.Decimal) decimal.Decimal {
	denominator := totalVisa
	if denominator.LessThan(epsilon) {
		denominator = epsilon
	}
	divergence := totalFinal.Sub(totalVisa).Abs().Div(denominator)
	return clampPercentage(decimal.NewFromInt(1).Sub(divergence).Mul(hundred))
}

// feeReconciled is the matched-item share of all invoiced items.
func feeReconciled(matchedItems, totalVisaItems int) decimal.Decimal {
	if totalVisaItems <= 0 {
		if matchedItems == 0 {
			return hundred
		}
		return decimal.Zero
	}
	ratio := decimal.NewFromInt(int64(matchedItems)).Div(decimal.NewFromInt(int64(totalVisaItems)))
	return clampPercentage(ratio.Mul(hundred))
}

// amountMatch is the smaller total as a share of the larger one.
func amountMatch(totalFinal, totalVisa decimal.Decimal) decimal.Decimal {
	smaller, larger := totalFinal.Abs(), totalVisa.Abs()
	if smaller.GreaterThan(larger) {
		smaller, larger = larger, smaller
	}
	if larger.IsZero() {
		return hundred
	}
	return clampPercentage(smaller.Div(larger).Mul(hundred))
}

func clampPercentage(d decimal.Decimal) decimal.Decimal {
	if d.Sign() < 0 {
		return decimal.Zero
	}
	if d.GreaterThan(hundred) {
		return hundred
	}
	return d
}
