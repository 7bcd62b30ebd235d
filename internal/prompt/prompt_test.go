package prompt

import (
	"strings"
	"testing"

	"github.com/bizformulate/insights-api/internal/catalog"
	"github.com/bizformulate/insights-api/internal/models"
)

const inputText = "Acme sells subscription software to SMBs"

func TestSummaryPrompt(t *testing.T) {
	got := Summary(inputText, Settings{Framework: "SWOT", Depth: models.DepthStandard, Perspective: 30})

	if !strings.HasPrefix(got, "Summarize this business text in 3–4 clear sentences.") {
		t.Errorf("summary prompt missing task instruction:\n%s", got)
	}
	if !strings.Contains(got, "This analysis should be standard.") {
		t.Errorf("summary prompt missing depth clause:\n%s", got)
	}
	if !strings.Contains(got, "Consider a detailed operational viewpoint.") {
		t.Errorf("perspective 30 should yield the operational clause:\n%s", got)
	}
	if !strings.HasSuffix(got, "\n\n"+inputText) {
		t.Errorf("summary prompt must end with the input text verbatim:\n%s", got)
	}
}

func TestCategoryInsightPromptCanvas(t *testing.T) {
	s := Settings{Framework: catalog.BusinessModelCanvas, Depth: models.DepthQuick, Perspective: 80}
	got := CategoryInsight(inputText, "Revenue Streams", s)

	if !strings.Contains(got, "'Revenue Streams' block of the Business Model Canvas") {
		t.Errorf("canvas prompt missing block framing:\n%s", got)
	}
	if !strings.Contains(got, "simple bullet points") {
		t.Errorf("canvas prompt must instruct bullet-point formatting:\n%s", got)
	}
	if !strings.Contains(got, "This analysis should be quick.") {
		t.Errorf("canvas prompt missing depth clause:\n%s", got)
	}
	if !strings.Contains(got, "Consider a big-picture strategic viewpoint.") {
		t.Errorf("perspective 80 should yield the strategic clause:\n%s", got)
	}
}

func TestCategoryInsightPromptGenericFramework(t *testing.T) {
	s := Settings{Framework: "SWOT", Depth: models.DepthDetailed, Perspective: 50}
	got := CategoryInsight(inputText, "Threats", s)

	if !strings.HasPrefix(got, "As a business consultant, analyze this text focusing on 'Threats' in the 'SWOT' framework.") {
		t.Errorf("generic prompt missing consultant framing:\n%s", got)
	}
	if strings.Contains(got, "bullet points") {
		t.Errorf("generic prompt must not instruct bullet formatting:\n%s", got)
	}
	if !strings.Contains(got, "Consider a detailed operational viewpoint.") {
		t.Errorf("perspective 50 is the operational side of the threshold:\n%s", got)
	}
}

func TestSuggestionsPrompt(t *testing.T) {
	got := Suggestions(inputText, Settings{Framework: "SWOT", Depth: models.DepthStandard, Perspective: 51})

	if !strings.HasPrefix(got, "Based on this text, suggest 3 strategic business actions or next steps.") {
		t.Errorf("suggestions prompt missing task instruction:\n%s", got)
	}
	if !strings.Contains(got, "Consider a big-picture strategic viewpoint.") {
		t.Errorf("perspective 51 should yield the strategic clause:\n%s", got)
	}
	if !strings.HasSuffix(got, "\n\n"+inputText) {
		t.Errorf("suggestions prompt must end with the input text verbatim:\n%s", got)
	}
}
