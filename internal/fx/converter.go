package fx

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"fee-reconciliation-service/internal/models"
	"fee-reconciliation-service/internal/tabular"
)

// ErrRateNotFound is returned when a conversion is required but the rate
// table carries no rate for the source currency.
var ErrRateNotFound = errors.New("exchange rate not found")

// RateTable maps a source currency code to its rate into the settlement
// currency.
type RateTable map[string]decimal.Decimal

var (
	rateCurrencyColumns = []string{"currency", "source currency", "from"}
	rateValueColumns    = []string{"exchange rate", "rate"}
)

// RateTableFromSheet builds a rate table from an "FX Rates" style sheet with
// currency and rate columns. Rows with malformed rates are skipped with a
// warning. Returns an empty table when the sheet is nil or unusable.
func RateTableFromSheet(sheet *tabular.Sheet, warnings *models.WarningList) RateTable {
	table := RateTable{}
	if sheet == nil {
		return table
	}

	currencyCol := sheet.ColumnIndex(rateCurrencyColumns...)
	rateCol := sheet.ColumnIndex(rateValueColumns...)
	if currencyCol < 0 || rateCol < 0 {
		return table
	}

	for rowNum, row := range sheet.Rows {
		currency := strings.ToUpper(sheet.Cell(row, currencyCol))
		if currency == "" {
			continue
		}
		rate, err := decimal.NewFromString(strings.ReplaceAll(sheet.Cell(row, rateCol), ",", ""))
		if err != nil || rate.Sign() <= 0 {
			warnings.Addf("fx sheet %q row %d: invalid rate %q for %s, rate skipped",
				sheet.Name, rowNum+2, sheet.Cell(row, rateCol), currency)
			continue
		}
		table[currency] = rate
	}

	return table
}

// Convert applies the exchange rate for sourceCurrency into targetCurrency.
// When no conversion is needed the raw amount is returned with no rate
// recorded. When a rate is required but absent, the raw amount is returned
// unchanged together with ErrRateNotFound; the caller degrades the line
// rather than aborting the run.
func Convert(raw decimal.Decimal, sourceCurrency, targetCurrency string, table RateTable) (decimal.Decimal, decimal.NullDecimal, error) {
	source := strings.ToUpper(strings.TrimSpace(sourceCurrency))
	target := strings.ToUpper(strings.TrimSpace(targetCurrency))

	if source == "" || source == target {
		return raw, decimal.NullDecimal{}, nil
	}

	rate, ok := table[source]
	if !ok {
		return raw, decimal.NullDecimal{}, ErrRateNotFound
	}

	return raw.Mul(rate), decimal.NullDecimal{Decimal: rate, Valid: true}, nil
}

// ApplyToSheets converts every fee line of every sheet into the settlement
// currency in place of its final amount. Lines whose rate is missing keep
// their raw amount and raise an "unconverted" warning.
func ApplyToSheets(sheets []models.FeeSheet, settlementCurrency string, table RateTable, warnings *models.WarningList) {
	for si := range sheets {
		for li := range sheets[si].Lines {
			line := &sheets[si].Lines[li]
			final, rate, err := Convert(line.RawAmount, line.Currency, settlementCurrency, table)
			if err != nil {
				warnings.Addf("sheet %q: no %s/%s rate for fee (%s, %s), amount left unconverted",
					sheets[si].Name, line.Currency, settlementCurrency, line.FeeType, line.RateChart)
			}
			line.FinalAmount = final
			line.ExchangeRate = rate
		}
	}
}
