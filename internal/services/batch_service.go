package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"fee-reconciliation-service/internal/jobs"
	"fee-reconciliation-service/internal/models"
	"fee-reconciliation-service/internal/render"
)

// BatchService fans a base folder of transaction subfolders out over a
// bounded worker pool. Each worker is an independent call into the core;
// failure of one transaction never aborts its siblings.
type BatchService struct {
	recon      *ReconciliationService
	jobStore   *jobs.Store
	maxWorkers int
}

func NewBatchService(recon *ReconciliationService, jobStore *jobs.Store, maxWorkers int) *BatchService {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &BatchService{
		recon:      recon,
		jobStore:   jobStore,
		maxWorkers: maxWorkers,
	}
}

// StartBatch validates the folder, registers a job and processes the batch
// in the background. Returns the job id for progress polling.
func (b *BatchService) StartBatch(folderPath string) (string, error) {
	info, err := os.Stat(folderPath)
	if err != nil {
		return "", fmt.Errorf("folder path does not exist: %s", folderPath)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path must be a directory: %s", folderPath)
	}

	jobID := b.jobStore.Create(folderPath)
	go b.run(jobID, folderPath)
	return jobID, nil
}

// Progress returns a snapshot of the job ledger entry.
func (b *BatchService) Progress(jobID string) (jobs.Job, bool) {
	return b.jobStore.Get(jobID)
}

func (b *BatchService) run(jobID, folderPath string) {
	folders, err := ScanTransactionFolders(folderPath)
	if err != nil {
		b.jobStore.Update(jobID, func(j *jobs.Job) {
			j.Status = jobs.StatusFailed
			j.Error = err.Error()
		})
		return
	}

	b.jobStore.Update(jobID, func(j *jobs.Job) {
		j.Progress = jobs.ProgressFetching
		j.TotalTransactions = len(folders)
	})

	results := make([]models.TransactionResult, len(folders))

	var wg sync.WaitGroup
	sem := make(chan struct{}, b.maxWorkers)

	for i, folder := range folders {
		wg.Add(1)
		go func(idx int, folder TransactionFolder) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			b.jobStore.Update(jobID, func(j *jobs.Job) {
				j.Progress = jobs.ProgressReconciling
				j.CurrentTransaction = folder.Name
			})

			results[idx] = b.processOne(folder)

			b.jobStore.Update(jobID, func(j *jobs.Job) {
				j.Processed++
			})
		}(i, folder)
	}
	wg.Wait()

	b.jobStore.Update(jobID, func(j *jobs.Job) {
		j.Progress = jobs.ProgressFinalizing
	})

	pdfPath := filepath.Join(os.TempDir(), fmt.Sprintf("batch_report_%s.pdf", jobID))
	if err := render.BatchPDF(results, pdfPath); err != nil {
		log.Printf("Failed to generate batch PDF for job %s: %v", jobID, err)
		pdfPath = ""
	}

	b.jobStore.Update(jobID, func(j *jobs.Job) {
		j.Status = jobs.StatusCompleted
		j.Results = results
		j.PDFPath = pdfPath
		j.CurrentTransaction = ""
	})
}

func (b *BatchService) processOne(folder TransactionFolder) models.TransactionResult {
	paths := MapFilesInFolder(folder.Path)
	if paths.Summary == "" {
		return models.TransactionResult{
			TransactionName: folder.Name,
			Status:          models.RunStatusFailed,
			Error:           "summary file not found",
		}
	}

	runResult, err := b.recon.RunTransaction(context.Background(), folder.Name, paths)
	if err != nil {
		return models.TransactionResult{
			TransactionName: folder.Name,
			Status:          models.RunStatusFailed,
			Error:           err.Error(),
		}
	}

	return models.TransactionResult{
		TransactionName: folder.Name,
		Status:          models.RunStatusCompleted,
		Report:          runResult.Report,
		EmailSent:       runResult.EmailSent,
	}
}
