// Package prompt builds the instruction strings sent to the inference
// gateway. Pure string assembly, no state.
package prompt

import (
	"fmt"

	"github.com/bizformulate/insights-api/internal/catalog"
	"github.com/bizformulate/insights-api/internal/models"
)

// Settings are the user-chosen dials applied to every prompt of an
// analysis run.
type Settings struct {
	Framework   string
	Depth       models.Depth
	Perspective int
}

// Summary asks for a 3-4 sentence overview of the text.
func Summary(text string, s Settings) string {
	return compose("Summarize this business text in 3–4 clear sentences.", text, s)
}

// CategoryInsight asks for an analysis of the text against one
// category. The Business Model Canvas gets bullet-point formatting; any
// other framework gets a consultant framing in free form.
func CategoryInsight(text, category string, s Settings) string {
	var task string
	if s.Framework == catalog.BusinessModelCanvas {
		task = fmt.Sprintf("Analyze this text in relation to the '%s' block of the Business Model Canvas."+
			" Please format your response as simple bullet points.", category)
	} else {
		task = fmt.Sprintf("As a business consultant, analyze this text focusing on '%s' in the '%s' framework.",
			category, s.Framework)
	}
	return compose(task, text, s)
}

// Suggestions asks for exactly 3 strategic next steps.
func Suggestions(text string, s Settings) string {
	return compose("Based on this text, suggest 3 strategic business actions or next steps.", text, s)
}

// compose appends the depth and perspective clauses to the task, then
// the full input text verbatim.
func compose(task, text string, s Settings) string {
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", task, depthClause(s.Depth), perspectiveClause(s.Perspective), text)
}

func depthClause(d models.Depth) string {
	switch d {
	case models.DepthQuick:
		return "This analysis should be quick."
	case models.DepthDetailed:
		return "This analysis should be detailed."
	default:
		return "This analysis should be standard."
	}
}

// perspectiveClause collapses the 0-100 dial into a binary framing.
// The threshold at 50 is intentional; there is no gradient in between.
func perspectiveClause(perspective int) string {
	if perspective > 50 {
		return "Consider a big-picture strategic viewpoint."
	}
	return "Consider a detailed operational viewpoint."
}
