package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/notelens/notelens/internal/domain"
	"github.com/notelens/notelens/internal/ports"
)

// assessmentSchema is the JSON Schema every backend response is validated
// against before decoding. Validation is all-or-nothing: a document that
// fails here is a malformed-output failure, and no field of it is trusted.
var assessmentSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"predicted_label": map[string]any{"type": "string"},
		"is_misleading":   map[string]any{"type": "boolean"},
		"summary":         map[string]any{"type": "string"},
		"sources": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"misleading_tags": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"reasons": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"confidence": map[string]any{
			"type": "string",
			"enum": []string{"high", "medium", "low"},
		},
	},
	"required": []string{"predicted_label", "is_misleading", "summary", "confidence"},
}

var assessmentSchemaLoader = gojsonschema.NewGoLoader(assessmentSchema)

// assessmentWire is the decoded response shape. Some backends still emit the
// legacy "reasons" key instead of "misleading_tags"; both are accepted, with
// the canonical key winning.
type assessmentWire struct {
	PredictedLabel string   `json:"predicted_label"`
	IsMisleading   bool     `json:"is_misleading"`
	Summary        string   `json:"summary"`
	Sources        []string `json:"sources"`
	MisleadingTags []string `json:"misleading_tags"`
	Reasons        []string `json:"reasons"`
	Confidence     string   `json:"confidence"`
}

// ExtractJSON scans text for the first balanced top-level JSON object,
// tolerating surrounding prose. It reports false when no well-formed object
// is present.
func ExtractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		if obj, ok := scanObject(text[start:]); ok {
			return obj, true
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += 1 + next
	}
	return "", false
}

// scanObject returns the balanced object at the start of s, if s begins one.
func scanObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := s[:i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				return "", false
			}
		}
	}
	return "", false
}

// ParseAssessment turns a backend's raw text into a validated structured
// assessment. The text may wrap the JSON object in prose. Schema violations
// and absent JSON both classify as malformed output; the caller preserves the
// raw text in the failure result.
func ParseAssessment(raw string) (domain.StructuredAssessment, error) {
	doc, ok := ExtractJSON(raw)
	if !ok {
		return domain.StructuredAssessment{}, fmt.Errorf("%w: no JSON object in response", ports.ErrMalformedOutput)
	}

	result, err := gojsonschema.Validate(assessmentSchemaLoader, gojsonschema.NewStringLoader(doc))
	if err != nil {
		return domain.StructuredAssessment{}, fmt.Errorf("%w: %v", ports.ErrMalformedOutput, err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return domain.StructuredAssessment{}, fmt.Errorf("%w: %s", ports.ErrMalformedOutput, strings.Join(issues, "; "))
	}

	var wire assessmentWire
	if err := json.Unmarshal([]byte(doc), &wire); err != nil {
		return domain.StructuredAssessment{}, fmt.Errorf("%w: %v", ports.ErrMalformedOutput, err)
	}

	tags := wire.MisleadingTags
	if len(tags) == 0 {
		tags = wire.Reasons
	}

	assessment := domain.StructuredAssessment{
		PredictedLabel: wire.PredictedLabel,
		IsMisleading:   wire.IsMisleading,
		Summary:        wire.Summary,
		Sources:        wire.Sources,
		MisleadingTags: domain.NormalizeTags(tags),
		Confidence:     domain.Confidence(wire.Confidence),
	}
	if err := assessment.Validate(); err != nil {
		return domain.StructuredAssessment{}, fmt.Errorf("%w: %v", ports.ErrMalformedOutput, err)
	}
	return assessment, nil
}
