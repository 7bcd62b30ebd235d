package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/bizformulate/insights-api/internal/models"
)

func newRepoWithMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { _ = db.Close() }
}

func TestSaveSessionWritesInsightsInOneTransaction(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	session := &models.AnalysisSession{
		ID:          "sess-1",
		InputText:   "Acme sells subscription software to SMBs",
		Framework:   "SWOT",
		Summary:     "A summary.",
		Suggestions: "Three steps.",
		Depth:       models.DepthStandard,
		Perspective: 30,
		CreatedAt:   created,
		Insights: []models.CategoryInsight{
			{Category: "Strengths", Insight: "Recurring revenue."},
			{Category: "Weaknesses", Insight: "Small team."},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO analysis_sessions").
		WithArgs("sess-1", session.InputText, "SWOT", "A summary.", "Three steps.",
			"standard", 30, "", "", created).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO session_insights").
		WithArgs("sess-1", "Strengths", "Recurring revenue.", 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO session_insights").
		WithArgs("sess-1", "Weaknesses", "Small team.", 1).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	if err := repo.SaveSession(context.Background(), session); err != nil {
		t.Fatalf("SaveSession returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveSessionRollsBackOnInsightFailure(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	session := &models.AnalysisSession{
		ID:        "sess-2",
		Framework: "SWOT",
		CreatedAt: time.Now().UTC(),
		Insights:  []models.CategoryInsight{{Category: "Strengths", Insight: "x"}},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO analysis_sessions").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO session_insights").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	if err := repo.SaveSession(context.Background(), session); err == nil {
		t.Fatalf("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetSessionMissingReturnsNil(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, input_text, framework").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	session, err := repo.GetSession(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if session != nil {
		t.Errorf("expected nil session, got %+v", session)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetSessionLoadsInsightsInOrder(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, input_text, framework").
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "input_text", "framework", "summary", "suggestions",
			"depth", "perspective", "source_filename", "s3_key", "created_at",
		}).AddRow("sess-1", "text", "SWOT", "sum", "sug", "standard", 30, "a.txt", "key", created))

	mock.ExpectQuery("SELECT category, insight FROM session_insights").
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"category", "insight"}).
			AddRow("Strengths", "s").
			AddRow("Weaknesses", "w").
			AddRow("Opportunities", "o").
			AddRow("Threats", "t"))

	session, err := repo.GetSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if session == nil {
		t.Fatalf("expected session")
	}

	if len(session.Insights) != 4 {
		t.Fatalf("got %d insights, want 4", len(session.Insights))
	}
	if session.Insights[0].Category != "Strengths" || session.Insights[3].Category != "Threats" {
		t.Errorf("insights out of order: %+v", session.Insights)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAddFeedbackUnknownSession(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT 1 FROM analysis_sessions").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.AddFeedback(context.Background(), "missing", models.ThumbUp, "")
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestReplaceFeedbackDeletesThenInserts(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT 1 FROM analysis_sessions").
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM feedback").
		WithArgs("sess-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO feedback").
		WithArgs("sess-1", "down", "too generic", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	id, err := repo.ReplaceFeedback(context.Background(), "sess-1", models.ThumbDown, "too generic")
	if err != nil {
		t.Fatalf("ReplaceFeedback returned error: %v", err)
	}
	if id != 7 {
		t.Errorf("ReplaceFeedback id = %d, want 7", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFeedbackForReturnsMostRecent(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	created := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, session_id, thumb, note, created_at FROM feedback").
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "thumb", "note", "created_at"}).
			AddRow(9, "sess-1", "up", "helpful", created))

	fb, err := repo.FeedbackFor(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("FeedbackFor returned error: %v", err)
	}
	if fb == nil || fb.ID != 9 || fb.Thumb != models.ThumbUp {
		t.Errorf("unexpected feedback: %+v", fb)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
