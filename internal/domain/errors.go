package domain

import "errors"

// Common domain errors returned by constructors and accessors.
var (
	// ErrInvalidAssessment indicates that a structured assessment failed
	// contract validation.
	ErrInvalidAssessment = errors.New("invalid structured assessment")

	// ErrEmptyModelName indicates that a result was built without a model
	// identifier.
	ErrEmptyModelName = errors.New("model name cannot be empty")

	// ErrNoReferenceNote indicates that a sample carries no human-authored
	// reference note and cannot be scored.
	ErrNoReferenceNote = errors.New("sample has no reference note")

	// ErrEmptySampleID indicates a sample without an identifier.
	ErrEmptySampleID = errors.New("sample id cannot be empty")
)
