package models

import (
	"fmt"
	"strings"
	"time"
)

// Framework is a named analytical lens with an ordered list of
// categories. Built-in frameworks (the Business Model Canvas) are
// ensured at startup; the rest arrive through seeding.
type Framework struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description,omitempty" db:"description"`
	BuiltIn     bool       `json:"built_in" db:"built_in"`
	Categories  []Category `json:"categories"`
}

// Category is one analytical dimension within a Framework.
type Category struct {
	ID          int64  `json:"id" db:"id"`
	FrameworkID int64  `json:"framework_id" db:"framework_id"`
	Name        string `json:"name" db:"name"`
	Position    int    `json:"position" db:"position"`
}

// Depth controls the verbosity instruction sent to the model.
type Depth string

const (
	DepthQuick    Depth = "quick"
	DepthStandard Depth = "standard"
	DepthDetailed Depth = "detailed"
)

// ParseDepth accepts the three depth settings case-insensitively and
// defaults to standard for an empty value.
func ParseDepth(s string) (Depth, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DepthStandard, nil
	case string(DepthQuick):
		return DepthQuick, nil
	case string(DepthStandard):
		return DepthStandard, nil
	case string(DepthDetailed):
		return DepthDetailed, nil
	}
	return "", fmt.Errorf("invalid depth %q: must be quick, standard or detailed", s)
}

// Thumb is a closed yes/no feedback rating.
type Thumb string

const (
	ThumbUp   Thumb = "up"
	ThumbDown Thumb = "down"
)

func ParseThumb(s string) (Thumb, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ThumbUp):
		return ThumbUp, nil
	case string(ThumbDown):
		return ThumbDown, nil
	}
	return "", fmt.Errorf("invalid thumb %q: must be up or down", s)
}

// CategoryInsight pairs a category name with the generated insight
// text. The slice keeps catalog order.
type CategoryInsight struct {
	Category string `json:"category" db:"category"`
	Insight  string `json:"insight" db:"insight"`
}

// AnalysisSession is one completed analysis run. Insights is nil when
// the framework defines no categories, which callers must distinguish
// from an empty result.
type AnalysisSession struct {
	ID             string            `json:"id" db:"id"`
	InputText      string            `json:"input_text" db:"input_text"`
	Framework      string            `json:"framework" db:"framework"`
	Summary        string            `json:"summary" db:"summary"`
	Suggestions    string            `json:"suggestions" db:"suggestions"`
	Depth          Depth             `json:"depth" db:"depth"`
	Perspective    int               `json:"perspective" db:"perspective"`
	SourceFilename string            `json:"source_filename,omitempty" db:"source_filename"`
	S3Key          string            `json:"s3_key,omitempty" db:"s3_key"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	Insights       []CategoryInsight `json:"insights,omitempty"`
}

// Feedback is a user reaction to one session. Multiple rows per
// session are allowed; replace is a separate explicit operation.
type Feedback struct {
	ID        int64     `json:"id" db:"id"`
	SessionID string    `json:"session_id" db:"session_id"`
	Thumb     Thumb     `json:"thumb" db:"thumb"`
	Note      string    `json:"note,omitempty" db:"note"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type AnalysisRequest struct {
	File        []byte
	Filename    string
	ContentType string
	Framework   string
	Depth       Depth
	Perspective int
}

type AnalysisResponse struct {
	SessionID   string            `json:"session_id"`
	Framework   string            `json:"framework"`
	Summary     string            `json:"summary"`
	Insights    []CategoryInsight `json:"insights,omitempty"`
	Suggestions string            `json:"suggestions"`
	CreatedAt   time.Time         `json:"created_at"`
}

// SessionDetail is a stored session plus its most recent feedback, if
// any.
type SessionDetail struct {
	AnalysisSession
	Feedback *Feedback `json:"feedback,omitempty"`
}

type FeedbackRequest struct {
	Thumb string `json:"thumb"`
	Note  string `json:"note,omitempty"`
}
