package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"fee-reconciliation-service/internal/models"
)

const systemPrompt = "You are a financial reconciliation expert specializing in card payment " +
	"transaction analysis and fee reconciliation. Provide detailed, technical analysis of discrepancies."

// ErrNotConfigured is returned when no API key was provided.
var ErrNotConfigured = errors.New("root cause analysis unavailable: API key is not configured")

type discrepancy struct {
	feeType               string
	diffStatus            string
	calculatedDisplay     string
	visaDisplay           string
	percentageDiffDisplay string
	calculationMethod     string
}

// RootCauseAnalyzer generates a narrative explanation of reconciliation
// discrepancies. It consumes only the already-classified report: the
// summary plus the rows whose status is not matched.
type RootCauseAnalyzer struct {
	client *openai.Client
	model  string
}

func NewRootCauseAnalyzer(apiKey, model string) *RootCauseAnalyzer {
	a := &RootCauseAnalyzer{model: model}
	if apiKey != "" {
		a.client = openai.NewClient(apiKey)
	}
	return a
}

// Available reports whether the analyzer is configured with an API key.
func (a *RootCauseAnalyzer) Available() bool {
	return a.client != nil
}

// Analyze generates the root cause narrative for a degraded report.
func (a *RootCauseAnalyzer) Analyze(ctx context.Context, rep *models.Report) (string, error) {
	if !a.Available() {
		return "", ErrNotConfigured
	}

	discrepancies := extractDiscrepancies(rep)
	if len(discrepancies) == 0 {
		return "No significant discrepancies found to analyze.", nil
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(rep, discrepancies)},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate analysis: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("analysis model returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// extractDiscrepancies collects the rows classified higher, lower or missing.
func extractDiscrepancies(rep *models.Report) []discrepancy {
	var out []discrepancy
	for _, sheet := range rep.Sheets {
		for _, row := range sheet.Rows {
			switch row.DiffStatus {
			case models.DiffHigher, models.DiffLower, models.DiffMissing:
				out = append(out, discrepancy{
					feeType:               row.FeeType,
					diffStatus:            row.DiffStatus,
					calculatedDisplay:     row.FinalAmountDisplay,
					visaDisplay:           row.VisaAmountDisplay,
					percentageDiffDisplay: row.PercentageDiffDisplay,
					calculationMethod:     row.CalculationMethod,
				})
			}
		}
	}
	return out
}

func buildPrompt(rep *models.Report, discrepancies []discrepancy) string {
	var b strings.Builder

	b.WriteString("Analyze the following reconciliation discrepancies and provide a root cause analysis.\n\n")
	b.WriteString("RECONCILIATION SUMMARY:\n")
	fmt.Fprintf(&b, "- Amount Reconciled: %s\n", rep.Summary.AmountReconciledDisplay)
	fmt.Fprintf(&b, "- Fee Reconciled: %s\n", rep.Summary.FeeReconciledDisplay)
	fmt.Fprintf(&b, "- Items Reconciled: %d/%d\n", rep.Summary.MatchedItems, rep.Summary.TotalVisaItems)
	fmt.Fprintf(&b, "- Calculated Total: %s\n", rep.Summary.TotalFinalAmountDisplay)
	fmt.Fprintf(&b, "- VISA Invoice Total: %s\n", rep.Summary.TotalVisaAmountDisplay)

	b.WriteString("\nIDENTIFIED DISCREPANCIES:\n")
	for i, d := range discrepancies {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, d.feeType)
		fmt.Fprintf(&b, "   - Calculated Value: %s\n", d.calculatedDisplay)
		fmt.Fprintf(&b, "   - VISA Invoice Value: %s\n", d.visaDisplay)
		fmt.Fprintf(&b, "   - Difference: %s\n", d.percentageDiffDisplay)
		fmt.Fprintf(&b, "   - Status: %s\n", d.diffStatus)
		fmt.Fprintf(&b, "   - Calculation Method: %s\n", d.calculationMethod)
	}

	b.WriteString(`
TASK:
Provide a detailed, fee-specific root cause analysis of why these discrepancies exist.

ANALYSIS STRUCTURE:

PART 1: FEE-BY-FEE ANALYSIS
For EACH fee type listed above with a discrepancy, provide the fee name with
its variance percentage, a brief description of the discrepancy, and
"Possible causes:" followed by bullet points with specific root causes.

PART 2: MISSING FEES ANALYSIS
If there are fees showing "missing" status, list which fees are missing,
explain what a missing calculation means, and connect it to the
reconciliation metrics.

PART 3: OVERALL PATTERNS
Identify cross-cutting issues: systematic problems affecting multiple fees,
common root causes across fee types, and data quality patterns.

IMPORTANT RULES:
- Provide ONLY analysis, NO recommendations or action items
- Be specific: reference actual amounts, rates, and percentages
- Focus on technical/operational causes (formulas, data, rates, mapping)
- Keep total length 400-600 words

ROOT CAUSE ANALYSIS:`)

	return b.String()
}
