package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"fee-reconciliation-service/internal/jobs"
	"fee-reconciliation-service/internal/services"
)

type BatchHandler struct {
	batchService *services.BatchService
}

func NewBatchHandler(batchService *services.BatchService) *BatchHandler {
	return &BatchHandler{
		batchService: batchService,
	}
}

// StartBatch kicks off background processing of every transaction folder
// under the given path and returns the job id for polling.
func (h *BatchHandler) StartBatch(w http.ResponseWriter, r *http.Request) {
	var request struct {
		FolderPath string `json:"folder_path"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if request.FolderPath == "" {
		respondWithError(w, http.StatusBadRequest, "Please enter a folder path")
		return
	}

	jobID, err := h.batchService.StartBatch(request.FolderPath)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"job_id": jobID,
		"status": "started",
	})
}

func (h *BatchHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID := vars["job_id"]

	job, ok := h.batchService.Progress(jobID)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Job not found")
		return
	}

	respondWithJSON(w, http.StatusOK, job)
}

// DownloadBatchPDF streams the completed batch's PDF report.
func (h *BatchHandler) DownloadBatchPDF(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID := vars["job_id"]

	job, ok := h.batchService.Progress(jobID)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Job not found")
		return
	}
	if job.Status != jobs.StatusCompleted || job.PDFPath == "" {
		respondWithError(w, http.StatusConflict, "No batch report available")
		return
	}
	if _, err := os.Stat(job.PDFPath); err != nil {
		respondWithError(w, http.StatusNotFound, "Batch report file not found")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="batch_reconciliation_report.pdf"`)
	http.ServeFile(w, r, job.PDFPath)
}
