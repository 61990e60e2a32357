package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"fee-reconciliation-service/internal/alerting"
	"fee-reconciliation-service/internal/analysis"
	"fee-reconciliation-service/internal/config"
	"fee-reconciliation-service/internal/jobs"
	"fee-reconciliation-service/internal/repositories"
	"fee-reconciliation-service/internal/services"
)

func SetupRouter(db *sql.DB, cfg *config.Config) *mux.Router {
	runRepo := repositories.NewRunRepository(db)
	alerter := alerting.NewEmailAlerter(cfg.SMTP)
	analyzer := analysis.NewRootCauseAnalyzer(cfg.OpenAI.APIKey, cfg.OpenAI.Model)

	reconciliationService := services.NewReconciliationService(cfg, runRepo, alerter, analyzer)
	jobStore := jobs.NewStore(time.Duration(cfg.Batch.JobTTLMinutes) * time.Minute)
	batchService := services.NewBatchService(reconciliationService, jobStore, cfg.Batch.MaxWorkers)

	reconciliationHandler := NewReconciliationHandler(reconciliationService)
	batchHandler := NewBatchHandler(batchService)

	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(jsonContentTypeMiddleware)

	api.HandleFunc("/reconciliations", reconciliationHandler.RunReconciliation).Methods(http.MethodPost)
	api.HandleFunc("/reconciliations", reconciliationHandler.ListRuns).Methods(http.MethodGet)
	api.HandleFunc("/reconciliations/{run_id}", reconciliationHandler.GetRun).Methods(http.MethodGet)
	api.HandleFunc("/reconciliations/{run_id}/report.xlsx", reconciliationHandler.DownloadExcelReport).Methods(http.MethodGet)

	api.HandleFunc("/batches", batchHandler.StartBatch).Methods(http.MethodPost)
	api.HandleFunc("/batches/{job_id}", batchHandler.GetProgress).Methods(http.MethodGet)
	api.HandleFunc("/batches/{job_id}/report.pdf", batchHandler.DownloadBatchPDF).Methods(http.MethodGet)

	router.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)

	return router
}

func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Error marshaling JSON response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
