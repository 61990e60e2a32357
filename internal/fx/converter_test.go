package fx

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fee-reconciliation-service/internal/models"
	"fee-reconciliation-service/internal/tabular"
)

func TestConvert(t *testing.T) {
	table := RateTable{
		"USD": decimal.NewFromInt(83),
		"EUR": decimal.RequireFromString("90.5"),
	}

	t.Run("converts through the table", func(t *testing.T) {
		final, rate, err := Convert(decimal.NewFromInt(100), "USD", "INR", table)
		require.NoError(t, err)
		assert.True(t, final.Equal(decimal.NewFromInt(8300)))
		require.True(t, rate.Valid)
		assert.True(t, rate.Decimal.Equal(decimal.NewFromInt(83)))
	})

	t.Run("same currency passes through without a rate", func(t *testing.T) {
		final, rate, err := Convert(decimal.NewFromInt(100), "INR", "INR", table)
		require.NoError(t, err)
		assert.True(t, final.Equal(decimal.NewFromInt(100)))
		assert.False(t, rate.Valid)
	})

	t.Run("empty currency passes through", func(t *testing.T) {
		final, rate, err := Convert(decimal.NewFromInt(100), "", "INR", table)
		require.NoError(t, err)
		assert.True(t, final.Equal(decimal.NewFromInt(100)))
		assert.False(t, rate.Valid)
	})

	t.Run("currency codes are case-insensitive", func(t *testing.T) {
		final, _, err := Convert(decimal.NewFromInt(2), "usd", "inr", table)
		require.NoError(t, err)
		assert.True(t, final.Equal(decimal.NewFromInt(166)))
	})

	t.Run("missing rate keeps raw amount", func(t *testing.T) {
		final, rate, err := Convert(decimal.NewFromInt(100), "GBP", "INR", table)
		assert.ErrorIs(t, err, ErrRateNotFound)
		assert.True(t, final.Equal(decimal.NewFromInt(100)))
		assert.False(t, rate.Valid)
	})
}

func TestRateTableFromSheet(t *testing.T) {
	sheet := &tabular.Sheet{
		Name:    "FX Rates",
		Columns: []string{"Currency", "Exchange Rate"},
		Rows: [][]string{
			{"USD", "83"},
			{"EUR", "90.5"},
			{"GBP", "not-a-rate"},
			{"JPY", "-1"},
			{"", "5"},
		},
	}
	warnings := &models.WarningList{}

	table := RateTableFromSheet(sheet, warnings)

	require.Len(t, table, 2)
	assert.True(t, table["USD"].Equal(decimal.NewFromInt(83)))
	assert.True(t, table["EUR"].Equal(decimal.RequireFromString("90.5")))
	// One warning each for the malformed and the non-positive rate.
	assert.Equal(t, 2, warnings.Len())
}

func TestRateTableFromSheet_NilSheet(t *testing.T) {
	warnings := &models.WarningList{}
	table := RateTableFromSheet(nil, warnings)
	assert.Empty(t, table)
	assert.Zero(t, warnings.Len())
}

func TestApplyToSheets(t *testing.T) {
	sheets := []models.FeeSheet{
		{Name: "Fees", Lines: []models.FeeLine{
			{FeeType: "A", RateChart: "1", RawAmount: decimal.NewFromInt(100), Currency: "USD"},
			{FeeType: "B", RateChart: "1", RawAmount: decimal.NewFromInt(200), Currency: "INR"},
			{FeeType: "C", RateChart: "1", RawAmount: decimal.NewFromInt(300), Currency: "GBP"},
		}},
	}
	table := RateTable{"USD": decimal.NewFromInt(83)}
	warnings := &models.WarningList{}

	ApplyToSheets(sheets, "INR", table, warnings)

	assert.True(t, sheets[0].Lines[0].FinalAmount.Equal(decimal.NewFromInt(8300)))
	assert.True(t, sheets[0].Lines[0].ExchangeRate.Valid)

	assert.True(t, sheets[0].Lines[1].FinalAmount.Equal(decimal.NewFromInt(200)))
	assert.False(t, sheets[0].Lines[1].ExchangeRate.Valid)

	// Missing rate degrades to the raw amount with a warning.
	assert.True(t, sheets[0].Lines[2].FinalAmount.Equal(decimal.NewFromInt(300)))
	assert.False(t, sheets[0].Lines[2].ExchangeRate.Valid)
	assert.Equal(t, 1, warnings.Len())
}
