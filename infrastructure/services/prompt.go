package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/notelens/notelens/internal/ports"
)

// systemPrompt frames the task for chat-style backends.
const systemPrompt = "You are a meticulous fact-checker writing community notes " +
	"for social-media videos. You assess whether a video is misleading, explain " +
	"why in two or three sentences, and cite sources when you can."

// analysisInstructions tells the backend what JSON object to emit. Backends
// with schema-constrained generation enforce the same shape server-side; the
// instructions keep free-text backends honest.
const analysisInstructions = `Respond with a single JSON object with these fields:
  "predicted_label": short label for the content (string)
  "is_misleading": whether the video is misleading (boolean)
  "summary": 2-3 sentence community note, or "No issues detected" (string)
  "sources": supporting URLs or citations (array of strings)
  "misleading_tags": applicable categories from factual_error, manipulated_media, outdated_information, missing_important_context, disputed_claim_as_fact, misinterpreted_satire, other (array of strings)
  "confidence": "high", "medium" or "low"`

// buildPrompt renders the per-request analysis prompt from the post context.
func buildPrompt(req ports.AnalysisRequest) string {
	var b strings.Builder
	b.WriteString("Assess the attached video for misinformation.\n\n")
	fmt.Fprintf(&b, "Post text: %s\n", req.PostText)
	fmt.Fprintf(&b, "Author: %s", req.AuthorName)
	if req.AuthorUsername != "" {
		fmt.Fprintf(&b, " (@%s)", req.AuthorUsername)
	}
	b.WriteString("\n")
	if req.PostCreatedAt != nil {
		fmt.Fprintf(&b, "Posted at: %s\n", req.PostCreatedAt.Format(time.RFC3339))
	}
	b.WriteString("\n")
	b.WriteString(analysisInstructions)
	return b.String()
}
