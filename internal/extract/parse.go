package extract

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount parses a spreadsheet cell into a decimal amount. Grouping
// commas, currency markers and surrounding whitespace are stripped first.
// The second return value is false when the cell held something non-numeric.
// Empty cells parse as zero and are not considered malformed.
func parseAmount(cell string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(cell)
	if cleaned == "" {
		return decimal.Zero, true
	}

	cleaned = strings.ReplaceAll(cleaned, ",", "")
	for _, marker := range []string{"₹", "$", "€", "£", "%"} {
		cleaned = strings.ReplaceAll(cleaned, marker, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	// Accounting-style negatives: (123.45)
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + cleaned[1:len(cleaned)-1]
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// parseCount parses a cell into an integer count, tolerating decimal points
// and grouping commas. Returns 0 and false for non-numeric cells.
func parseCount(cell string) (int64, bool) {
	d, ok := parseAmount(cell)
	if !ok {
		return 0, false
	}
	return d.IntPart(), true
}
