package report

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount with two decimal places and grouped
// thousands, e.g. 8300 -> "8,300.00". The string reparses to the value
// rounded at two decimals.
func FormatAmount(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	whole, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		// Magnitude beyond int64 grouping; fall back to the plain form.
		if negative {
			return "-" + fixed
		}
		return fixed
	}

	out := humanize.Comma(whole) + "." + parts[1]
	if negative {
		out = "-" + out
	}
	return out
}

// FormatPercent renders a percentage at two decimal places, e.g. "98.78%".
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

// FormatSignedPercent renders a percentage difference with an explicit sign
// on positive values, e.g. "+1.22%".
func FormatSignedPercent(d decimal.Decimal) string {
	if d.Sign() > 0 {
		return "+" + FormatPercent(d)
	}
	return FormatPercent(d)
}

// ParseDisplayAmount reverses FormatAmount, for round-trip verification by
// rendering collaborators.
func ParseDisplayAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
}
