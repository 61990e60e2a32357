package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"fee-reconciliation-service/internal/models"
	"fee-reconciliation-service/internal/render"
	"fee-reconciliation-service/internal/services"
)

type ReconciliationHandler struct {
	reconciliationService *services.ReconciliationService
}

func NewReconciliationHandler(reconciliationService *services.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconciliationService: reconciliationService,
	}
}

type runRequest struct {
	TransactionName string              `json:"transaction_name"`
	FolderPath      string              `json:"folder_path,omitempty"`
	Files           *services.FilePaths `json:"files,omitempty"`
}

// RunReconciliation reconciles one transaction synchronously. The caller
// either names a transaction folder to map by filename pattern, or supplies
// explicit workbook paths.
func (h *ReconciliationHandler) RunReconciliation(w http.ResponseWriter, r *http.Request) {
	var request runRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	var paths services.FilePaths
	switch {
	case request.Files != nil:
		paths = *request.Files
	case request.FolderPath != "":
		paths = services.MapFilesInFolder(request.FolderPath)
	default:
		respondWithError(w, http.StatusBadRequest, "Either folder_path or files is required")
		return
	}

	result, err := h.reconciliationService.RunTransaction(r.Context(), request.TransactionName, paths)
	if err != nil {
		if errors.Is(err, services.ErrNoFeeSource) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *ReconciliationHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := h.reconciliationService.ListRecentRuns(limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, runs)
}

func (h *ReconciliationHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["run_id"]

	if runID == "" {
		respondWithError(w, http.StatusBadRequest, "Run ID is required")
		return
	}

	run, err := h.reconciliationService.GetRun(runID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, run)
}

// DownloadExcelReport streams the persisted run's report as an Excel
// workbook.
func (h *ReconciliationHandler) DownloadExcelReport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["run_id"]

	run, err := h.reconciliationService.GetRun(runID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	if run.Status != models.RunStatusCompleted || len(run.Report) == 0 {
		respondWithError(w, http.StatusConflict, "No report available for this run")
		return
	}

	var rep models.Report
	if err := json.Unmarshal(run.Report, &rep); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Stored report is unreadable")
		return
	}

	workbook, err := render.ReportWorkbook(&rep)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="reconciliation_report_%s.xlsx"`, runID))
	if err := workbook.Write(w); err != nil {
		// Headers are already out; nothing left but to log via the server.
		return
	}
}
