package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fee-reconciliation-service/internal/jobs"
	"fee-reconciliation-service/internal/models"
)

func waitForJob(t *testing.T, batch *BatchService, jobID string) jobs.Job {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := batch.Progress(jobID)
		require.True(t, ok)
		if job.Status != jobs.StatusProcessing {
			return job
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("batch job did not finish in time")
	return jobs.Job{}
}

func TestBatchService_IsolatesFailures(t *testing.T) {
	base := t.TempDir()

	// One reconcilable folder and one without a summary workbook.
	good := filepath.Join(base, "Jan2026")
	require.NoError(t, os.Mkdir(good, 0o755))
	writeSummaryWorkbook(t, good, [][]interface{}{
		{"Fee Type", "Rate Chart", "Amount", "Currency"},
		{"Integrity Fee", "A", "100", "USD"},
	})
	require.NoError(t, os.Rename(
		filepath.Join(good, "summary.xlsx"),
		filepath.Join(good, "Fee_Summary_Jan.xlsx"),
	))
	writeInvoiceWorkbook(t, good, [][]interface{}{
		{"Fee Type", "Rate Chart", "Visa Amount"},
		{"Integrity Fee", "A", "8300"},
	})
	require.NoError(t, os.Rename(
		filepath.Join(good, "invoice.xlsx"),
		filepath.Join(good, "Visa_Invoice_Jan.xlsx"),
	))

	bad := filepath.Join(base, "Feb2026")
	require.NoError(t, os.Mkdir(bad, 0o755))

	repo := &stubRunRepo{}
	svc := NewReconciliationService(testConfig(), repo, nil, nil)
	batch := NewBatchService(svc, jobs.NewStore(time.Hour), 2)

	jobID, err := batch.StartBatch(base)
	require.NoError(t, err)

	job := waitForJob(t, batch, jobID)

	assert.Equal(t, jobs.StatusCompleted, job.Status)
	assert.Equal(t, 2, job.TotalTransactions)
	assert.Equal(t, 2, job.Processed)
	require.Len(t, job.Results, 2)

	// Folders are processed in name order; the bad one fails alone.
	assert.Equal(t, "Feb2026", job.Results[0].TransactionName)
	assert.Equal(t, models.RunStatusFailed, job.Results[0].Status)
	assert.Equal(t, "summary file not found", job.Results[0].Error)

	assert.Equal(t, "Jan2026", job.Results[1].TransactionName)
	assert.Equal(t, models.RunStatusCompleted, job.Results[1].Status)
	require.NotNil(t, job.Results[1].Report)
	assert.Equal(t, models.DiffMatched, job.Results[1].Report.Sheets[0].Rows[0].DiffStatus)

	// The batch PDF lands in the temp dir.
	require.NotEmpty(t, job.PDFPath)
	_, statErr := os.Stat(job.PDFPath)
	assert.NoError(t, statErr)
	t.Cleanup(func() { os.Remove(job.PDFPath) })
}

func TestBatchService_RejectsBadPaths(t *testing.T) {
	svc := NewReconciliationService(testConfig(), &stubRunRepo{}, nil, nil)
	batch := NewBatchService(svc, jobs.NewStore(time.Hour), 2)

	_, err := batch.StartBatch(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = batch.StartBatch(file)
	assert.Error(t, err)
}

func TestBatchService_EmptyBase(t *testing.T) {
	svc := NewReconciliationService(testConfig(), &stubRunRepo{}, nil, nil)
	batch := NewBatchService(svc, jobs.NewStore(time.Hour), 2)

	jobID, err := batch.StartBatch(t.TempDir())
	require.NoError(t, err)

	job := waitForJob(t, batch, jobID)
	assert.Equal(t, jobs.StatusCompleted, job.Status)
	assert.Zero(t, job.TotalTransactions)
	assert.Empty(t, job.Results)
	t.Cleanup(func() {
		if job.PDFPath != "" {
			os.Remove(job.PDFPath)
		}
	})
}
