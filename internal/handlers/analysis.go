package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/bizformulate/insights-api/internal/models"
	"github.com/bizformulate/insights-api/internal/services"
	"github.com/bizformulate/insights-api/internal/utils"
)

const (
	MaxFileSize = 5 << 20 // 5MB

	defaultRecentLimit = 5
	maxRecentLimit     = 50
)

type AnalysisHandler struct {
	service services.AnalysisService
	logger  *utils.Logger
}

func NewAnalysisHandler(service services.AnalysisService, logger *utils.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AnalysisHandler) ListFrameworks(w http.ResponseWriter, r *http.Request) {
	frameworks, err := h.service.ListFrameworks(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, frameworks)
}

// RunAnalysis accepts a multipart form: file, framework, depth,
// perspective. It blocks until every generation call completes.
func (h *AnalysisHandler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > MaxFileSize {
		h.respondError(w, utils.NewBadRequestError("File size exceeds 5MB limit"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxFileSize)

	if err := r.ParseMultipartForm(MaxFileSize); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			h.respondError(w, utils.NewBadRequestError("File size exceeds 5MB limit"))
			return
		}
		h.respondError(w, utils.NewBadRequestError("Invalid form data"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, utils.NewBadRequestError("No file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxFileSize+1))
	if err != nil {
		h.respondError(w, utils.NewInternalError("Failed to read file"))
		return
	}
	if len(data) > MaxFileSize {
		h.respondError(w, utils.NewBadRequestError("File size exceeds 5MB limit"))
		return
	}
	if len(data) == 0 {
		h.respondError(w, utils.NewBadRequestError("Uploaded file is empty"))
		return
	}

	framework := strings.TrimSpace(r.FormValue("framework"))
	if framework == "" {
		h.respondError(w, utils.NewBadRequestError("Framework is required"))
		return
	}

	depth, err := models.ParseDepth(r.FormValue("depth"))
	if err != nil {
		h.respondError(w, utils.NewBadRequestError(err.Error()))
		return
	}

	perspective, err := parsePerspective(r.FormValue("perspective"))
	if err != nil {
		h.respondError(w, utils.NewBadRequestError(err.Error()))
		return
	}

	h.logger.Info("Analysis requested",
		"filename", header.Filename,
		"framework", framework,
		"depth", depth,
		"perspective", perspective)

	req := &models.AnalysisRequest{
		File:        data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Framework:   framework,
		Depth:       depth,
		Perspective: perspective,
	}

	resp, err := h.service.RunAnalysis(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, resp)
}

func (h *AnalysisHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxRecentLimit {
			h.respondError(w, utils.NewBadRequestError(fmt.Sprintf("limit must be between 1 and %d", maxRecentLimit)))
			return
		}
		limit = parsed
	}

	sessions, err := h.service.ListRecent(r.Context(), limit)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, sessions)
}

func (h *AnalysisHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		h.respondError(w, utils.NewBadRequestError("Session ID is required"))
		return
	}

	detail, err := h.service.GetSession(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, detail)
}

// ExportSession serves the fixed-format plain-text artifact as a
// download.
func (h *AnalysisHandler) ExportSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		h.respondError(w, utils.NewBadRequestError("Session ID is required"))
		return
	}

	filename, content, err := h.service.ExportSession(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		h.logger.Error("Failed to write export", "error", err)
	}
}

// DownloadArtifact serves the archived original upload.
func (h *AnalysisHandler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		h.respondError(w, utils.NewBadRequestError("Session ID is required"))
		return
	}

	filename, data, err := h.service.DownloadArtifact(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("Failed to write artifact", "error", err)
	}
}

func (h *AnalysisHandler) AddFeedback(w http.ResponseWriter, r *http.Request) {
	h.handleFeedback(w, r, h.service.AddFeedback, http.StatusCreated)
}

func (h *AnalysisHandler) ReplaceFeedback(w http.ResponseWriter, r *http.Request) {
	h.handleFeedback(w, r, h.service.ReplaceFeedback, http.StatusOK)
}

func (h *AnalysisHandler) handleFeedback(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, sessionID string, req *models.FeedbackRequest) (*models.Feedback, error),
	status int,
) {
	id := mux.Vars(r)["id"]
	if id == "" {
		h.respondError(w, utils.NewBadRequestError("Session ID is required"))
		return
	}

	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, utils.NewBadRequestError("Invalid JSON body"))
		return
	}

	fb, err := op(r.Context(), id, &req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, status, fb)
}

func parsePerspective(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 50, nil
	}

	perspective, err := strconv.Atoi(raw)
	if err != nil || perspective < 0 || perspective > 100 {
		return 0, fmt.Errorf("perspective must be an integer between 0 and 100")
	}

	return perspective, nil
}

func (h *AnalysisHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (h *AnalysisHandler) respondError(w http.ResponseWriter, err error) {
	var status int
	var message string

	switch e := err.(type) {
	case *utils.AppError:
		status = e.StatusCode
		message = e.Message
	default:
		status = http.StatusInternalServerError
		message = "Internal server error"
	}

	h.logger.Error("Request error", "status", status, "error", message)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
