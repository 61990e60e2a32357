package repositories

import (
	"database/sql"
	"errors"

	"fee-reconciliation-service/internal/models"
)

type RunRepository interface {
	CreateRun(run *models.ReconciliationRun) error
	GetRunByRunID(runID string) (*models.ReconciliationRun, error)
	ListRecentRuns(limit int) ([]*models.ReconciliationRun, error)
}

type runRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) CreateRun(run *models.ReconciliationRun) error {
	query := `
		INSERT INTO reconciliation_runs (
			run_id, transaction_name, status, amount_reconciled,
			fee_reconciled, alert_sent, report, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		run.RunID,
		run.TransactionName,
		run.Status,
		run.AmountReconciled,
		run.FeeReconciled,
		run.AlertSent,
		run.Report,
		run.ErrorMessage,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	run.ID = id
	return nil
}

func (r *runRepository) GetRunByRunID(runID string) (*models.ReconciliationRun, error) {
	run := &models.ReconciliationRun{}
	query := `
		SELECT id, run_id, transaction_name, status, amount_reconciled,
		       fee_reconciled, alert_sent, report, error_message, created_at
		FROM reconciliation_runs
		WHERE run_id = ?
	`
	err := r.db.QueryRow(query, runID).Scan(
		&run.ID,
		&run.RunID,
		&run.TransactionName,
		&run.Status,
		&run.AmountReconciled,
		&run.FeeReconciled,
		&run.AlertSent,
		&run.Report,
		&run.ErrorMessage,
		&run.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.New("reconciliation run not found")
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (r *runRepository) ListRecentRuns(limit int) ([]*models.ReconciliationRun, error) {
	query := `
		SELECT id, run_id, transaction_name, status, amount_reconciled,
		       fee_reconciled, alert_sent, error_message, created_at
		FROM reconciliation_runs
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.ReconciliationRun
	for rows.Next() {
		run := &models.ReconciliationRun{}
		err := rows.Scan(
			&run.ID,
			&run.RunID,
			&run.TransactionName,
			&run.Status,
			&run.AmountReconciled,
			&run.FeeReconciled,
			&run.AlertSent,
			&run.ErrorMessage,
			&run.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
