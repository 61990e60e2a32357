package matching

import (
	"errors"

	"github.com/shopspring/decimal"

	"fee-reconciliation-service/internal/models"
)

const (
	// Percentage difference tolerance for a line to count as matched
	DefaultTolerancePercent = 1.0
)

// PercentageDiffCap is the sentinel recorded when the invoice amount is zero
// but the calculated amount is not: the deviation is unbounded, so it is
// pinned to this signed cap instead of relying on division by zero.
var PercentageDiffCap = decimal.NewFromFloat(9999.99)

// ErrNilFeeSheets signals a structural contract violation, not a data
// quality issue: the caller passed no fee sheet slice at all.
var ErrNilFeeSheets = errors.New("fee sheets must not be nil")

// Engine aligns calculated fee lines with invoice lines by
// (fee type, rate chart) key and classifies every pairing.
type Engine struct {
	tolerance decimal.Decimal
	feeSheets []models.FeeSheet
	invoice   []models.InvoiceLine
}

func NewEngine(tolerancePercent float64) *Engine {
	if tolerancePercent <= 0 {
		tolerancePercent = DefaultTolerancePercent
	}
	return &Engine{tolerance: decimal.NewFromFloat(tolerancePercent)}
}

func (e *Engine) SetData(feeSheets []models.FeeSheet, invoiceLines []models.InvoiceLine) {
	e.feeSheets = feeSheets
	e.invoice = invoiceLines
}

// ProcessMatches produces one MatchResult per fee line, in sheet and row
// order, plus the invoice lines no fee line claimed. The two unmatched
// directions are asymmetric: a fee line without an invoice counterpart
// yields a "missing" result, while an invoice line without a fee counterpart
// yields no result of its own and is only counted by the aggregator.
func (e *Engine) ProcessMatches() ([]models.SheetResult, []models.InvoiceLine, error) {
	if e.feeSheets == nil {
		return nil, nil, ErrNilFeeSheets
	}

	invoiceByKey := make(map[models.LineKey]models.InvoiceLine, len(e.invoice))
	for _, line := range e.invoice {
		invoiceByKey[line.Key()] = line
	}
	claimed := make(map[models.LineKey]bool)

	results := make([]models.SheetResult, 0, len(e.feeSheets))
	for _, sheet := range e.feeSheets {
		sheetResult := models.SheetResult{Name: sheet.Name, Rows: make([]models.MatchResult, 0, len(sheet.Lines))}

		for _, fee := range sheet.Lines {
			result := models.MatchResult{
				FeeType:           fee.FeeType,
				RateChart:         fee.RateChart,
				CalculationMethod: fee.CalculationMethod,
				RawAmount:         fee.RawAmount,
				ExchangeRate:      fee.ExchangeRate,
				FinalAmount:       fee.FinalAmount,
			}

			if invoiceLine, ok := invoiceByKey[fee.Key()]; ok {
				claimed[fee.Key()] = true
				result.VisaAmount = decimal.NullDecimal{Decimal: invoiceLine.VisaAmount, Valid: true}
				result.PercentageDiff, result.DiffStatus = e.classify(fee.FinalAmount, invoiceLine.VisaAmount)
			} else {
				result.DiffStatus = models.DiffMissing
			}

			sheetResult.Rows = append(sheetResult.Rows, result)
		}
		results = append(results, sheetResult)
	}

	var unmatched []models.InvoiceLine
	for _, line := range e.invoice {
		if !claimed[line.Key()] {
			unmatched = append(unmatched, line)
		}
	}

	return results, unmatched, nil
}

// classify computes the percentage deviation of the calculated amount from
// the invoiced amount and buckets it against the tolerance.
func (e *Engine) classify(finalAmount, visaAmount decimal.Decimal) (decimal.NullDecimal, string) {
	if visaAmount.IsZero() {
		if finalAmount.IsZero() {
			return decimal.NullDecimal{Decimal: decimal.Zero, Valid: true}, models.DiffMatched
		}
		if finalAmount.Sign() > 0 {
			return decimal.NullDecimal{Decimal: PercentageDiffCap, Valid: true}, models.DiffHigher
		}
		return decimal.NullDecimal{Decimal: PercentageDiffCap.Neg(), Valid: true}, models.DiffLower
	}

	diff := finalAmount.Sub(visaAmount).Div(visaAmount).Mul(decimal.NewFromInt(100))
	status := models.DiffMatched
	switch {
	case diff.GreaterThan(e.tolerance):
		status = models.DiffHigher
	case diff.LessThan(e.tolerance.Neg()):
		status = models.DiffLower
	}

	return decimal.NullDecimal{Decimal: diff, Valid: true}, status
}
