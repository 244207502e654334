// Package domain defines the core types of the evaluation harness: the
// structured assessment a model backend must produce, the dataset sample it is
// judged on, and the per-sample and aggregate scoring records.
// Types here carry no I/O; loading, model invocation, and persistence live in
// the application and infrastructure layers.
package domain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Confidence expresses how certain a backend is about its assessment.
type Confidence string

// Valid confidence levels.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// validate is the package-level validator shared by all domain constructors.
var validate = validator.New(validator.WithRequiredStructEnabled())

// StructuredAssessment is the fixed-schema answer every model backend must
// produce. Fields are validated as a whole before the assessment is trusted;
// a partially valid assessment is rejected rather than patched.
type StructuredAssessment struct {
	// PredictedLabel is a short free-text tag for the content. It is
	// deliberately not an enum because backends phrase this differently.
	PredictedLabel string `json:"predicted_label"`

	// IsMisleading reports whether the backend judged the video misleading.
	IsMisleading bool `json:"is_misleading"`

	// Summary is the community-note style explanation. Empty means the
	// backend produced none.
	Summary string `json:"summary"`

	// Sources lists URLs or citations supporting the summary, in the order
	// the backend emitted them.
	Sources []string `json:"sources"`

	// MisleadingTags holds category tags from the open misinformation
	// vocabulary (factual_error, manipulated_media, ...).
	MisleadingTags []string `json:"misleading_tags"`

	// Confidence is the backend's self-reported certainty.
	Confidence Confidence `json:"confidence" validate:"required,oneof=high medium low"`
}

// Validate checks the assessment against the contract. Validation is
// all-or-nothing; callers must not use any field of an assessment that
// failed validation.
func (a *StructuredAssessment) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAssessment, err)
	}
	return nil
}

// AnalysisResult is the tagged outcome of one backend invocation. Exactly one
// of the two states is populated: on success the Assessment carries the
// validated structured output, on failure Error describes what went wrong and
// the assessment fields stay at their zero values. Construct results through
// NewAnalysisSuccess and NewAnalysisFailure so ambiguous partial states cannot
// exist.
type AnalysisResult struct {
	// Success reports whether the backend produced a validated assessment.
	Success bool `json:"success"`

	// Model identifies the backend that produced this result.
	Model string `json:"model"`

	// Assessment holds the structured output. Only meaningful when
	// Success is true.
	Assessment StructuredAssessment `json:"assessment"`

	// RawResponse preserves the backend's raw text for post-hoc debugging.
	// It is populated on success and on malformed-output failures.
	RawResponse string `json:"raw_response,omitempty"`

	// Error is the human-readable failure description. Only populated
	// when Success is false.
	Error string `json:"error,omitempty"`
}

// NewAnalysisSuccess builds a successful result from a validated assessment.
// It returns an error if the assessment does not satisfy the contract, so a
// success result always carries trustworthy fields.
func NewAnalysisSuccess(model string, assessment StructuredAssessment, raw string) (AnalysisResult, error) {
	if model == "" {
		return AnalysisResult{}, ErrEmptyModelName
	}
	if err := assessment.Validate(); err != nil {
		return AnalysisResult{}, err
	}
	return AnalysisResult{
		Success:     true,
		Model:       model,
		Assessment:  assessment,
		RawResponse: raw,
	}, nil
}

// NewAnalysisFailure builds a failure result. The assessment fields are left
// at their defaults and the error string is mandatory.
func NewAnalysisFailure(model string, err error) AnalysisResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return AnalysisResult{
		Success: false,
		Model:   model,
		Error:   msg,
	}
}

// NewAnalysisFailureRaw builds a failure result that preserves the backend's
// raw response text, used for malformed-output failures where the raw text is
// the primary diagnostic.
func NewAnalysisFailureRaw(model string, err error, raw string) AnalysisResult {
	r := NewAnalysisFailure(model, err)
	r.RawResponse = raw
	return r
}

// Check verifies the result invariant: a success carries a valid assessment
// and no error string, a failure carries an error string and default
// assessment fields.
func (r *AnalysisResult) Check() error {
	if r.Model == "" {
		return ErrEmptyModelName
	}
	if r.Success {
		if r.Error != "" {
			return errors.New("success result must not carry an error")
		}
		return r.Assessment.Validate()
	}
	if r.Error == "" {
		return errors.New("failure result must carry an error")
	}
	return nil
}
