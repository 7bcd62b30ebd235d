package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bizformulate/insights-api/internal/handlers"
	"github.com/bizformulate/insights-api/internal/middleware"
	"github.com/bizformulate/insights-api/internal/services"
	"github.com/bizformulate/insights-api/internal/utils"
)

func NewRouter(analysisService services.AnalysisService, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Recovery(logger))

	analysisHandler := handlers.NewAnalysisHandler(analysisService, logger)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	// Framework catalog
	api.HandleFunc("/frameworks", analysisHandler.ListFrameworks).Methods(http.MethodGet)

	// Analysis runs and stored sessions
	api.HandleFunc("/analyses", analysisHandler.RunAnalysis).Methods(http.MethodPost)
	api.HandleFunc("/sessions", analysisHandler.ListSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", analysisHandler.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/export", analysisHandler.ExportSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/artifact", analysisHandler.DownloadArtifact).Methods(http.MethodGet)

	// Feedback
	api.HandleFunc("/sessions/{id}/feedback", analysisHandler.AddFeedback).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/feedback", analysisHandler.ReplaceFeedback).Methods(http.MethodPut)

	return r
}
