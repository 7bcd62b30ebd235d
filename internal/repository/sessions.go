package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bizformulate/insights-api/internal/models"
)

// Repository persists completed analysis sessions and their feedback.
// Sessions are immutable once written; feedback may be appended or
// explicitly replaced.
type Repository interface {
	SaveSession(ctx context.Context, session *models.AnalysisSession) error
	GetSession(ctx context.Context, id string) (*models.AnalysisSession, error)
	ListRecent(ctx context.Context, limit int) ([]models.AnalysisSession, error)
	DeleteSession(ctx context.Context, id string) error
	AddFeedback(ctx context.Context, sessionID string, thumb models.Thumb, note string) (int64, error)
	ReplaceFeedback(ctx context.Context, sessionID string, thumb models.Thumb, note string) (int64, error)
	FeedbackFor(ctx context.Context, sessionID string) (*models.Feedback, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// SaveSession writes the session row and its insight rows in one
// transaction, so a half-written analysis can never be observed.
func (r *repository) SaveSession(ctx context.Context, session *models.AnalysisSession) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO analysis_sessions
			(id, input_text, framework, summary, suggestions, depth, perspective, source_filename, s3_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.ID,
		session.InputText,
		session.Framework,
		session.Summary,
		session.Suggestions,
		session.Depth,
		session.Perspective,
		session.SourceFilename,
		session.S3Key,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	for i, insight := range session.Insights {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO session_insights (session_id, category, insight, position)
			VALUES (?, ?, ?, ?)
		`, session.ID, insight.Category, insight.Insight, i); err != nil {
			return fmt.Errorf("failed to insert insight for %q: %w", insight.Category, err)
		}
	}

	return tx.Commit()
}

// GetSession returns the session with its insights in category order,
// or nil when no such session exists.
func (r *repository) GetSession(ctx context.Context, id string) (*models.AnalysisSession, error) {
	var session models.AnalysisSession
	err := r.db.GetContext(ctx, &session, `
		SELECT id, input_text, framework, summary, suggestions, depth, perspective, source_filename, s3_key, created_at
		FROM analysis_sessions
		WHERE id = ?
	`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err := r.db.SelectContext(ctx, &session.Insights, `
		SELECT category, insight FROM session_insights
		WHERE session_id = ?
		ORDER BY position
	`, id); err != nil {
		return nil, fmt.Errorf("failed to load insights: %w", err)
	}

	return &session, nil
}

// ListRecent returns up to limit sessions, most recent first.
func (r *repository) ListRecent(ctx context.Context, limit int) ([]models.AnalysisSession, error) {
	var sessions []models.AnalysisSession
	if err := r.db.SelectContext(ctx, &sessions, `
		SELECT id, input_text, framework, summary, suggestions, depth, perspective, source_filename, s3_key, created_at
		FROM analysis_sessions
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		return sessions, nil
	}

	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}

	query, args, err := sqlx.In(`
		SELECT session_id, category, insight, position FROM session_insights
		WHERE session_id IN (?)
		ORDER BY position
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build insights query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load insights: %w", err)
	}
	defer rows.Close()

	bySession := make(map[string][]models.CategoryInsight)
	for rows.Next() {
		var sessionID string
		var insight models.CategoryInsight
		var position int
		if err := rows.Scan(&sessionID, &insight.Category, &insight.Insight, &position); err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		bySession[sessionID] = append(bySession[sessionID], insight)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read insights: %w", err)
	}

	for i := range sessions {
		sessions[i].Insights = bySession[sessions[i].ID]
	}

	return sessions, nil
}

// DeleteSession removes a session; insight and feedback rows go with it
// via the foreign-key cascades.
func (r *repository) DeleteSession(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM analysis_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// AddFeedback appends a feedback row. Multiple rows per session are
// allowed.
func (r *repository) AddFeedback(ctx context.Context, sessionID string, thumb models.Thumb, note string) (int64, error) {
	if err := r.sessionExists(ctx, sessionID); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO feedback (session_id, thumb, note, created_at)
		VALUES (?, ?, ?, ?)
	`, sessionID, thumb, note, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert feedback: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get feedback id: %w", err)
	}

	return id, nil
}

// ReplaceFeedback drops any existing feedback for the session and
// writes a single new row.
func (r *repository) ReplaceFeedback(ctx context.Context, sessionID string, thumb models.Thumb, note string) (int64, error) {
	if err := r.sessionExists(ctx, sessionID); err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM feedback WHERE session_id = ?`, sessionID); err != nil {
		return 0, fmt.Errorf("failed to clear feedback: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO feedback (session_id, thumb, note, created_at)
		VALUES (?, ?, ?, ?)
	`, sessionID, thumb, note, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert feedback: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get feedback id: %w", err)
	}

	return id, tx.Commit()
}

// FeedbackFor returns the most recent feedback row for the session, or
// nil when none exists.
func (r *repository) FeedbackFor(ctx context.Context, sessionID string) (*models.Feedback, error) {
	var fb models.Feedback
	err := r.db.GetContext(ctx, &fb, `
		SELECT id, session_id, thumb, note, created_at FROM feedback
		WHERE session_id = ?
		ORDER BY id DESC
		LIMIT 1
	`, sessionID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}

	return &fb, nil
}

func (r *repository) sessionExists(ctx context.Context, sessionID string) error {
	var one int
	err := r.db.GetContext(ctx, &one, `SELECT 1 FROM analysis_sessions WHERE id = ?`, sessionID)
	if err == sql.ErrNoRows {
		return sql.ErrNoRows
	}
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	return nil
}
