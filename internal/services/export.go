package services

import (
	"fmt"
	"strings"

	"github.com/bizformulate/insights-api/internal/models"
)

// Section markers of the export artifact. Fixed so a stored session can
// be recovered from its exported form.
const (
	sectionInput       = "--- INPUT TEXT ---"
	sectionSummary     = "--- SUMMARY ---"
	sectionInsights    = "--- FRAMEWORK INSIGHTS ---"
	sectionSuggestions = "--- STRATEGIC SUGGESTIONS ---"
)

// renderExport builds the downloadable plain-text artifact: header
// lines, then the four fixed sections in order.
func renderExport(session *models.AnalysisSession) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Framework: %s\n", session.Framework)
	fmt.Fprintf(&b, "Analysis Depth: %s\n", session.Depth)
	fmt.Fprintf(&b, "Perspective: %d\n", session.Perspective)
	b.WriteString("\n")

	b.WriteString(sectionInput + "\n")
	b.WriteString(session.InputText + "\n\n")

	b.WriteString(sectionSummary + "\n")
	b.WriteString(session.Summary + "\n\n")

	b.WriteString(sectionInsights + "\n")
	b.WriteString(DisplayInsights(session.Insights) + "\n\n")

	b.WriteString(sectionSuggestions + "\n")
	b.WriteString(session.Suggestions + "\n")

	return b.String()
}

// DisplayInsights renders the structured insight rows in their
// human-readable form, one bracketed category heading per insight.
func DisplayInsights(insights []models.CategoryInsight) string {
	if insights == nil {
		return "No categories defined for this framework."
	}

	parts := make([]string, 0, len(insights))
	for _, insight := range insights {
		parts = append(parts, fmt.Sprintf("[%s]\n%s", insight.Category, insight.Insight))
	}

	return strings.Join(parts, "\n\n")
}
