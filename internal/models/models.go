package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FeeLine represents one calculated fee entry extracted from the summary workbook
type FeeLine struct {
	FeeType           string              `json:"fee_type"`
	RateChart         string              `json:"rate_chart"`
	CalculationMethod string              `json:"calculation_method"`
	RawAmount         decimal.Decimal     `json:"raw_amount"`
	Currency          string              `json:"currency,omitempty"`
	ExchangeRate      decimal.NullDecimal `json:"exchange_rate"`
	FinalAmount       decimal.Decimal     `json:"final_amount"`
}

// Key returns the identity used to align a fee line with its invoice counterpart.
func (f FeeLine) Key() LineKey {
	return LineKey{FeeType: f.FeeType, RateChart: f.RateChart}
}

// InvoiceLine represents one externally reported fee entry in settlement currency
type InvoiceLine struct {
	FeeType    string          `json:"fee_type"`
	RateChart  string          `json:"rate_chart"`
	VisaAmount decimal.Decimal `json:"visa_amount"`
}

func (l InvoiceLine) Key() LineKey {
	return LineKey{FeeType: l.FeeType, RateChart: l.RateChart}
}

// LineKey is the (fee type, rate chart) pair both sides are matched on
type LineKey struct {
	FeeType   string
	RateChart string
}

// FeeSheet groups the fee lines extracted from one named sheet, in row order
type FeeSheet struct {
	Name  string    `json:"name"`
	Lines []FeeLine `json:"lines"`
}

// MatchResult is the outcome of comparing one fee line against the invoice
type MatchResult struct {
	FeeType           string              `json:"fee_type"`
	RateChart         string              `json:"rate_chart"`
	CalculationMethod string              `json:"calculation_method"`
	RawAmount         decimal.Decimal     `json:"calculated_amount"`
	ExchangeRate      decimal.NullDecimal `json:"exchange_rate"`
	FinalAmount       decimal.Decimal     `json:"final_amount"`
	VisaAmount        decimal.NullDecimal `json:"visa_amount"`
	PercentageDiff    decimal.NullDecimal `json:"percentage_diff"`
	DiffStatus        string              `json:"diff_status"`

	CalculatedAmountDisplay string `json:"calculated_amount_display,omitempty"`
	FinalAmountDisplay      string `json:"final_amount_display,omitempty"`
	VisaAmountDisplay       string `json:"visa_amount_display,omitempty"`
	PercentageDiffDisplay   string `json:"percentage_diff_display,omitempty"`
}

// SheetResult holds the ordered match results for one input sheet
type SheetResult struct {
	Name string        `json:"name"`
	Rows []MatchResult `json:"rows"`
}

// Summary holds the aggregate statistics derived from all match results
type Summary struct {
	TotalFinalAmount decimal.Decimal `json:"total_final_amount"`
	TotalVisaAmount  decimal.Decimal `json:"total_visa_amount"`

	MatchedItems         int `json:"matched_items"`
	ExactMatchItems      int `json:"exact_match_items"`
	TotalVisaItems       int `json:"total_visa_items"`
	TotalCalculatedItems int `json:"total_calculated_items"`
	TotalMappings        int `json:"total_mappings"`
	SheetCount           int `json:"sheet_count"`

	// Unrounded values; alert thresholds compare against these, never the
	// 2-decimal display strings.
	AmountReconciledPercentage decimal.Decimal `json:"amount_reconciled_percentage"`
	FeeReconciledPercentage    decimal.Decimal `json:"fee_reconciled_percentage"`
	AmountMatchPercentage      decimal.Decimal `json:"amount_match_percentage"`

	TotalFinalAmountDisplay string `json:"total_final_amount_display,omitempty"`
	TotalVisaAmountDisplay  string `json:"total_visa_amount_display,omitempty"`
	AmountReconciledDisplay string `json:"amount_reconciled_display,omitempty"`
	FeeReconciledDisplay    string `json:"fee_reconciled_display,omitempty"`
	AmountMatchDisplay      string `json:"amount_match_display,omitempty"`
}

// CardMonthly is one period's card issuance count
type CardMonthly struct {
	Period string `json:"period"`
	Cards  int64  `json:"cards"`
}

// CardSection is the optional card issuance pass-through section
type CardSection struct {
	TotalCards  int64         `json:"total_cards"`
	MonthlyData []CardMonthly `json:"monthly_data,omitempty"`
}

// TransactionEntry is one line of the transaction volume overview
type TransactionEntry struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Volume int64           `json:"volume"`
}

// TransactionSection is the optional transaction volume pass-through section
type TransactionSection struct {
	Entries []TransactionEntry `json:"entries"`
}

// Report is the root aggregate exchanged with rendering, alerting and the
// root cause analyzer. Immutable once assembled.
type Report struct {
	Summary      Summary             `json:"summary"`
	Sheets       []SheetResult       `json:"sheets"`
	Card         *CardSection        `json:"card,omitempty"`
	Transactions *TransactionSection `json:"transactions,omitempty"`
	Warnings     []string            `json:"warnings"`
}

// DiffStatus constants
const (
	DiffMatched = "matched"
	DiffHigher  = "higher"
	DiffLower   = "lower"
	DiffMissing = "missing"
)

// Duplicate (fee type, rate chart) key policies
const (
	DuplicateLastWins = "last-wins"
	DuplicateSum      = "sum"
)

// ReconciliationRun is a persisted reconciliation outcome for one transaction
type ReconciliationRun struct {
	ID               int64           `db:"id" json:"id"`
	RunID            string          `db:"run_id" json:"run_id"`
	TransactionName  string          `db:"transaction_name" json:"transaction_name"`
	Status           string          `db:"status" json:"status"`
	AmountReconciled decimal.Decimal `db:"amount_reconciled" json:"amount_reconciled"`
	FeeReconciled    decimal.Decimal `db:"fee_reconciled" json:"fee_reconciled"`
	AlertSent        bool            `db:"alert_sent" json:"alert_sent"`
	Report           json.RawMessage `db:"report" json:"report,omitempty"`
	ErrorMessage     string          `db:"error_message" json:"error_message,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"-"`
}

// Run status constants
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// TransactionResult is the per-transaction outcome within a batch
type TransactionResult struct {
	TransactionName string  `json:"transaction_name"`
	Status          string  `json:"status"`
	Error           string  `json:"error,omitempty"`
	Report          *Report `json:"report,omitempty"`
	EmailSent       bool    `json:"email_sent"`
}

// WarningList collects data quality warnings raised across the pipeline,
// preserving emission order.
type WarningList struct {
	entries []string
}

// Addf appends a formatted warning.
func (w *WarningList) Addf(format string, args ...interface{}) {
	w.entries = append(w.entries, fmt.Sprintf(format, args...))
}

// Entries returns the collected warnings; never nil.
func (w *WarningList) Entries() []string {
	if w.entries == nil {
		return []string{}
	}
	return w.entries
}

// Len returns the number of collected warnings.
func (w *WarningList) Len() int {
	return len(w.entries)
}
