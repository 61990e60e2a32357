package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fee-reconciliation-service/internal/config"
	"fee-reconciliation-service/internal/extract"
	"fee-reconciliation-service/internal/fx"
	"fee-reconciliation-service/internal/matching"
	"fee-reconciliation-service/internal/models"
	"fee-reconciliation-service/internal/report"
	"fee-reconciliation-service/internal/repositories"
	"fee-reconciliation-service/internal/tabular"
)

// ErrNoFeeSource signals a structural failure: the calculated-fee source is
// entirely absent. No partial report is produced for it.
var ErrNoFeeSource = errors.New("calculated-fee source is required")

// Alerter notifies when a run reconciles below the configured threshold.
type Alerter interface {
	SendAlert(rep *models.Report, transactionName string) error
}

// Analyzer produces a narrative root cause explanation for a degraded run.
type Analyzer interface {
	Analyze(ctx context.Context, rep *models.Report) (string, error)
}

// RunResult is the full outcome of one transaction reconciliation.
type RunResult struct {
	RunID             string         `json:"run_id"`
	TransactionName   string         `json:"transaction_name"`
	Report            *models.Report `json:"report"`
	EmailSent         bool           `json:"email_sent"`
	RootCauseAnalysis string         `json:"root_cause_analysis,omitempty"`
}

// ReconciliationService drives the core pipeline for one transaction folder:
// read workbooks, extract lines, convert currency, match, aggregate,
// assemble, persist, alert.
type ReconciliationService struct {
	cfg              *config.Config
	runRepo          repositories.RunRepository
	feeExtractor     *extract.FeeLineExtractor
	invoiceExtractor *extract.InvoiceLineExtractor
	alerter          Alerter
	analyzer         Analyzer
}

func NewReconciliationService(
	cfg *config.Config,
	runRepo repositories.RunRepository,
	alerter Alerter,
	analyzer Analyzer,
) *ReconciliationService {
	return &ReconciliationService{
		cfg:              cfg,
		runRepo:          runRepo,
		feeExtractor:     extract.NewFeeLineExtractor(cfg.Engine.DuplicateKeyPolicy),
		invoiceExtractor: extract.NewInvoiceLineExtractor(cfg.Engine.DuplicateKeyPolicy),
		alerter:          alerter,
		analyzer:         analyzer,
	}
}

// RunTransaction reconciles one transaction folder's workbooks. Row-level
// data issues degrade into report warnings; only structural failures (no fee
// source, unreadable summary workbook) return an error, in which case a
// failed run is recorded and no report exists.
func (s *ReconciliationService) RunTransaction(ctx context.Context, name string, paths FilePaths) (*RunResult, error) {
	runID := uuid.NewString()

	rep, err := s.buildReport(paths)
	if err != nil {
		s.persistFailure(runID, name, err)
		return nil, err
	}

	result := &RunResult{
		RunID:           runID,
		TransactionName: name,
		Report:          rep,
	}

	threshold := decimal.NewFromFloat(s.cfg.Engine.AlertThresholdPercent)
	// Threshold decision on the unrounded percentage, never the display value.
	if rep.Summary.AmountReconciledPercentage.LessThan(threshold) {
		if s.alerter != nil {
			if err := s.alerter.SendAlert(rep, name); err != nil {
				log.Printf("Failed to send reconciliation alert for %s: %v", name, err)
			} else {
				result.EmailSent = true
			}
		}
		if s.analyzer != nil {
			analysis, err := s.analyzer.Analyze(ctx, rep)
			if err != nil {
				log.Printf("Root cause analysis failed for %s: %v", name, err)
			} else {
				result.RootCauseAnalysis = analysis
			}
		}
	}

	s.persistRun(result)
	return result, nil
}

// buildReport runs the pure core pipeline over the mapped workbooks.
func (s *ReconciliationService) buildReport(paths FilePaths) (*models.Report, error) {
	if paths.Summary == "" {
		return nil, ErrNoFeeSource
	}

	summaryWB, err := tabular.OpenWorkbook(paths.Summary)
	if err != nil {
		return nil, fmt.Errorf("failed to load calculated-fee source: %w", err)
	}

	warnings := &models.WarningList{}

	invoiceWB, err := tabular.OpenOptional(paths.Invoice)
	if err != nil {
		warnings.Addf("invoice source unreadable (%v), all fee lines will be missing", err)
		invoiceWB = nil
	}
	if invoiceWB == nil && paths.Invoice == "" {
		warnings.Addf("no invoice source provided, all fee lines will be missing")
	}

	feeSheets := s.feeExtractor.ExtractWorkbook(summaryWB, warnings)
	if feeSheets == nil {
		feeSheets = []models.FeeSheet{}
	}
	invoiceLines := s.invoiceExtractor.ExtractWorkbook(invoiceWB, warnings)

	rateTable := fx.RateTableFromSheet(summaryWB.Sheet("FX Rates"), warnings)
	fx.ApplyToSheets(feeSheets, s.cfg.Engine.SettlementCurrency, rateTable, warnings)

	engine := matching.NewEngine(s.cfg.Engine.TolerancePercent)
	engine.SetData(feeSheets, invoiceLines)
	sheetResults, unmatchedInvoice, err := engine.ProcessMatches()
	if err != nil {
		return nil, fmt.Errorf("failed to process matches: %w", err)
	}
	for _, line := range unmatchedInvoice {
		warnings.Addf("invoice line (%s, %s) has no calculated counterpart", line.FeeType, line.RateChart)
	}

	summary := report.Aggregate(sheetResults, len(unmatchedInvoice))

	card, transactions := s.auxSections(paths, warnings)

	return report.Assemble(sheetResults, summary, card, transactions, warnings), nil
}

func (s *ReconciliationService) auxSections(paths FilePaths, warnings *models.WarningList) (*models.CardSection, *models.TransactionSection) {
	cardWB, err := tabular.OpenOptional(paths.Card)
	if err != nil {
		warnings.Addf("card issuance source unreadable, section omitted (%v)", err)
	}
	card := extract.ExtractCardSection(cardWB, warnings)

	var entries []models.TransactionEntry
	for _, source := range []struct {
		path  string
		label string
	}{
		{paths.International, "International"},
		{paths.Domestic, "Domestic"},
		{paths.Dispute, "Dispute"},
	} {
		wb, err := tabular.OpenOptional(source.path)
		if err != nil {
			warnings.Addf("%s source unreadable, entry omitted (%v)", source.label, err)
			continue
		}
		if entry := extract.ExtractTransactionEntry(wb, source.label, warnings); entry != nil {
			entries = append(entries, *entry)
		}
	}

	var transactions *models.TransactionSection
	if len(entries) > 0 {
		transactions = &models.TransactionSection{Entries: entries}
	}
	return card, transactions
}

func (s *ReconciliationService) persistRun(result *RunResult) {
	if s.runRepo == nil {
		return
	}

	reportJSON, err := json.Marshal(result.Report)
	if err != nil {
		log.Printf("Failed to marshal report for run %s: %v", result.RunID, err)
		reportJSON = nil
	}

	run := &models.ReconciliationRun{
		RunID:            result.RunID,
		TransactionName:  result.TransactionName,
		Status:           models.RunStatusCompleted,
		AmountReconciled: result.Report.Summary.AmountReconciledPercentage.Round(4),
		FeeReconciled:    result.Report.Summary.FeeReconciledPercentage.Round(4),
		AlertSent:        result.EmailSent,
		Report:           reportJSON,
	}
	if err := s.runRepo.CreateRun(run); err != nil {
		log.Printf("Failed to persist run %s: %v", result.RunID, err)
	}
}

func (s *ReconciliationService) persistFailure(runID, name string, cause error) {
	if s.runRepo == nil {
		return
	}

	run := &models.ReconciliationRun{
		RunID:            runID,
		TransactionName:  name,
		Status:           models.RunStatusFailed,
		AmountReconciled: decimal.Zero,
		FeeReconciled:    decimal.Zero,
		ErrorMessage:     cause.Error(),
	}
	if err := s.runRepo.CreateRun(run); err != nil {
		log.Printf("Failed to persist failed run %s: %v", runID, err)
	}
}

// GetRun fetches a persisted run by its id.
func (s *ReconciliationService) GetRun(runID string) (*models.ReconciliationRun, error) {
	return s.runRepo.GetRunByRunID(runID)
}

// ListRecentRuns returns the most recently persisted runs, newest first.
func (s *ReconciliationService) ListRecentRuns(limit int) ([]*models.ReconciliationRun, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.runRepo.ListRecentRuns(limit)
}
