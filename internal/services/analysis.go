package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bizformulate/insights-api/internal/config"
	"github.com/bizformulate/insights-api/internal/extractor"
	"github.com/bizformulate/insights-api/internal/inference"
	"github.com/bizformulate/insights-api/internal/models"
	"github.com/bizformulate/insights-api/internal/prompt"
	"github.com/bizformulate/insights-api/internal/repository"
	"github.com/bizformulate/insights-api/internal/storage"
	"github.com/bizformulate/insights-api/internal/utils"
)

// Catalog is the subset of the framework catalog the orchestrator
// needs.
type Catalog interface {
	ListFrameworks(ctx context.Context) ([]models.Framework, error)
	CategoriesOf(ctx context.Context, name string) ([]string, error)
}

type AnalysisService interface {
	ListFrameworks(ctx context.Context) ([]models.Framework, error)
	RunAnalysis(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResponse, error)
	GetSession(ctx context.Context, id string) (*models.SessionDetail, error)
	ListRecent(ctx context.Context, limit int) ([]models.SessionDetail, error)
	ExportSession(ctx context.Context, id string) (string, []byte, error)
	DownloadArtifact(ctx context.Context, id string) (string, []byte, error)
	AddFeedback(ctx context.Context, sessionID string, req *models.FeedbackRequest) (*models.Feedback, error)
	ReplaceFeedback(ctx context.Context, sessionID string, req *models.FeedbackRequest) (*models.Feedback, error)
}

type analysisService struct {
	catalog Catalog
	repo    repository.Repository
	storage storage.Storage
	gateway inference.Gateway
	logger  *utils.Logger
}

func NewService(repo repository.Repository, cat Catalog, cfg *config.Config, logger *utils.Logger) AnalysisService {
	s3Storage, err := storage.NewS3Storage(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize S3 storage", "error", err)
	}

	gateway := inference.NewGateway(cfg.InferenceAPIKey, cfg.InferenceBaseURL, cfg.InferenceModel)

	return &analysisService{
		catalog: cat,
		repo:    repo,
		storage: s3Storage,
		gateway: gateway,
		logger:  logger,
	}
}

func (s *analysisService) ListFrameworks(ctx context.Context) ([]models.Framework, error) {
	frameworks, err := s.catalog.ListFrameworks(ctx)
	if err != nil {
		s.logger.Error("Failed to list frameworks", "error", err)
		return nil, utils.NewInternalError("Failed to list frameworks")
	}
	return frameworks, nil
}

// RunAnalysis is the full pipeline: extract text, resolve the
// framework's categories, run the summary, per-category and suggestion
// generations in sequence, then persist the session atomically. Any
// generation failure aborts the run with nothing persisted.
func (s *analysisService) RunAnalysis(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResponse, error) {
	text, err := s.extractText(req)
	if err != nil {
		return nil, err
	}

	// Resolve categories before touching the gateway; an unknown
	// framework must not burn any generation calls.
	categories, err := s.catalog.CategoriesOf(ctx, req.Framework)
	if err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		s.logger.Error("Failed to resolve framework categories", "error", err, "framework", req.Framework)
		return nil, utils.NewInternalError("Failed to resolve framework categories")
	}

	settings := prompt.Settings{
		Framework:   req.Framework,
		Depth:       req.Depth,
		Perspective: req.Perspective,
	}

	s.logger.Info("Starting analysis",
		"framework", req.Framework,
		"depth", req.Depth,
		"perspective", req.Perspective,
		"categories", len(categories),
		"text_length", len(text))

	summary, err := s.gateway.Generate(ctx, prompt.Summary(text, settings))
	if err != nil {
		s.logger.Error("Summary generation failed", "error", err)
		return nil, utils.NewInternalError("Failed to generate summary")
	}

	// Insights stay nil for a framework with no categories; callers
	// distinguish that from an empty result.
	var insights []models.CategoryInsight
	for _, category := range categories {
		insight, err := s.gateway.Generate(ctx, prompt.CategoryInsight(text, category, settings))
		if err != nil {
			s.logger.Error("Insight generation failed", "error", err, "category", category)
			return nil, utils.NewInternalError(fmt.Sprintf("Failed to generate insight for '%s'", category))
		}
		insights = append(insights, models.CategoryInsight{Category: category, Insight: insight})
	}

	suggestions, err := s.gateway.Generate(ctx, prompt.Suggestions(text, settings))
	if err != nil {
		s.logger.Error("Suggestions generation failed", "error", err)
		return nil, utils.NewInternalError("Failed to generate suggestions")
	}

	sessionID := utils.GenerateID()

	// Archive the original upload. The analysis result matters more
	// than the archive copy, so a failure here only logs.
	s3Key := ""
	if len(req.File) > 0 && req.Filename != "" {
		key := fmt.Sprintf("uploads/%s/%s", sessionID, req.Filename)
		if err := s.storage.Upload(ctx, key, req.File, req.ContentType); err != nil {
			s.logger.Warn("Failed to archive upload", "error", err, "s3_key", key)
		} else {
			s3Key = key
		}
	}

	session := &models.AnalysisSession{
		ID:             sessionID,
		InputText:      text,
		Framework:      req.Framework,
		Summary:        summary,
		Suggestions:    suggestions,
		Depth:          req.Depth,
		Perspective:    req.Perspective,
		SourceFilename: req.Filename,
		S3Key:          s3Key,
		CreatedAt:      time.Now().UTC(),
		Insights:       insights,
	}

	if err := s.repo.SaveSession(ctx, session); err != nil {
		s.logger.Error("Failed to save session", "error", err, "session_id", sessionID)
		if s3Key != "" {
			_ = s.storage.Delete(ctx, s3Key)
		}
		return nil, utils.NewInternalError("Failed to save analysis session")
	}

	s.logger.Info("Analysis complete",
		"session_id", sessionID,
		"framework", req.Framework,
		"insights", len(insights))

	return &models.AnalysisResponse{
		SessionID:   session.ID,
		Framework:   session.Framework,
		Summary:     session.Summary,
		Insights:    session.Insights,
		Suggestions: session.Suggestions,
		CreatedAt:   session.CreatedAt,
	}, nil
}

func (s *analysisService) GetSession(ctx context.Context, id string) (*models.SessionDetail, error) {
	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get session", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to retrieve session")
	}
	if session == nil {
		return nil, utils.NewNotFoundError("Session not found")
	}

	feedback, err := s.repo.FeedbackFor(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get feedback", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to retrieve feedback")
	}

	return &models.SessionDetail{AnalysisSession: *session, Feedback: feedback}, nil
}

func (s *analysisService) ListRecent(ctx context.Context, limit int) ([]models.SessionDetail, error) {
	sessions, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to list sessions", "error", err)
		return nil, utils.NewInternalError("Failed to list sessions")
	}

	details := make([]models.SessionDetail, 0, len(sessions))
	for _, session := range sessions {
		feedback, err := s.repo.FeedbackFor(ctx, session.ID)
		if err != nil {
			s.logger.Error("Failed to get feedback", "error", err, "id", session.ID)
			return nil, utils.NewInternalError("Failed to retrieve feedback")
		}
		details = append(details, models.SessionDetail{AnalysisSession: session, Feedback: feedback})
	}

	return details, nil
}

// ExportSession renders the fixed-section plain-text artifact for
// download, named session_{id}.txt.
func (s *analysisService) ExportSession(ctx context.Context, id string) (string, []byte, error) {
	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get session", "error", err, "id", id)
		return "", nil, utils.NewInternalError("Failed to retrieve session")
	}
	if session == nil {
		return "", nil, utils.NewNotFoundError("Session not found")
	}

	filename := fmt.Sprintf("session_%s.txt", session.ID)
	return filename, []byte(renderExport(session)), nil
}

// DownloadArtifact fetches the archived original upload for a session.
func (s *analysisService) DownloadArtifact(ctx context.Context, id string) (string, []byte, error) {
	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get session", "error", err, "id", id)
		return "", nil, utils.NewInternalError("Failed to retrieve session")
	}
	if session == nil {
		return "", nil, utils.NewNotFoundError("Session not found")
	}
	if session.S3Key == "" {
		return "", nil, utils.NewNotFoundError("Session has no archived artifact")
	}

	data, err := s.storage.Download(ctx, session.S3Key)
	if err != nil {
		s.logger.Error("Failed to download artifact", "error", err, "s3_key", session.S3Key)
		return "", nil, utils.NewInternalError("Failed to retrieve artifact")
	}

	return session.SourceFilename, data, nil
}

func (s *analysisService) AddFeedback(ctx context.Context, sessionID string, req *models.FeedbackRequest) (*models.Feedback, error) {
	thumb, err := models.ParseThumb(req.Thumb)
	if err != nil {
		return nil, utils.NewBadRequestError(err.Error())
	}

	id, err := s.repo.AddFeedback(ctx, sessionID, thumb, req.Note)
	if err == sql.ErrNoRows {
		return nil, utils.NewNotFoundError("Session not found")
	}
	if err != nil {
		s.logger.Error("Failed to add feedback", "error", err, "session_id", sessionID)
		return nil, utils.NewInternalError("Failed to save feedback")
	}

	return &models.Feedback{ID: id, SessionID: sessionID, Thumb: thumb, Note: req.Note}, nil
}

func (s *analysisService) ReplaceFeedback(ctx context.Context, sessionID string, req *models.FeedbackRequest) (*models.Feedback, error) {
	thumb, err := models.ParseThumb(req.Thumb)
	if err != nil {
		return nil, utils.NewBadRequestError(err.Error())
	}

	id, err := s.repo.ReplaceFeedback(ctx, sessionID, thumb, req.Note)
	if err == sql.ErrNoRows {
		return nil, utils.NewNotFoundError("Session not found")
	}
	if err != nil {
		s.logger.Error("Failed to replace feedback", "error", err, "session_id", sessionID)
		return nil, utils.NewInternalError("Failed to save feedback")
	}

	return &models.Feedback{ID: id, SessionID: sessionID, Thumb: thumb, Note: req.Note}, nil
}

// extractText converts the uploaded artifact to plain text, surfacing
// unsupported formats as a distinct failure instead of empty text.
func (s *analysisService) extractText(req *models.AnalysisRequest) (string, error) {
	format, err := extractor.DetectFormat(req.Filename, req.ContentType)
	if err != nil {
		s.logger.Warn("Unsupported upload format",
			"filename", req.Filename,
			"content_type", req.ContentType)
		return "", utils.NewUnsupportedFormatError(
			fmt.Sprintf("Unsupported file type '%s'. Only TXT, PDF and DOCX are allowed", req.ContentType))
	}

	text, err := extractor.ExtractText(req.File, format)
	if err != nil {
		if errors.Is(err, extractor.ErrUnsupportedFormat) {
			return "", utils.NewUnsupportedFormatError("Unsupported file type. Only TXT, PDF and DOCX are allowed")
		}
		s.logger.Error("Failed to extract text", "error", err, "filename", req.Filename, "format", format)
		return "", utils.NewBadRequestError(fmt.Sprintf("Failed to extract text from document: %v", err))
	}

	if strings.TrimSpace(text) == "" {
		s.logger.Warn("No text extracted from document", "filename", req.Filename)
		return "", utils.NewBadRequestError("No text could be extracted from the document. The file may be empty or corrupted")
	}

	return text, nil
}
