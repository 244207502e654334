package ports

import (
	"errors"
	"fmt"
)

// Common failures surfaced by backend implementations. Backends fold these
// into failure-tagged results at the service boundary; they do not escape to
// the orchestrator as raised errors.
var (
	// ErrServiceUnavailable indicates a backend was invoked despite
	// IsAvailable reporting false.
	ErrServiceUnavailable = errors.New("service not available")

	// ErrUploadFailed indicates the video asset could not be delivered to
	// the remote endpoint.
	ErrUploadFailed = errors.New("video upload failed")

	// ErrProcessingFailed indicates the remote endpoint reported a failed
	// processing state for the uploaded asset.
	ErrProcessingFailed = errors.New("video processing failed")

	// ErrProcessingTimeout indicates the remote asset never reached the
	// ready state within the bounded poll budget. Distinct from
	// ErrProcessingFailed so timeouts are diagnosable.
	ErrProcessingTimeout = errors.New("video processing timed out")

	// ErrMalformedOutput indicates the backend's response contained no
	// well-formed JSON object or violated the assessment schema.
	ErrMalformedOutput = errors.New("malformed model output")

	// ErrFrameExtraction indicates frames could not be decoded from the
	// video file.
	ErrFrameExtraction = errors.New("frame extraction failed")
)

// BackendError wraps a failure with the backend's model name and the
// operation that failed, preserving the classified cause for errors.Is.
type BackendError struct {
	// Model identifies the backend that failed.
	Model string

	// Operation names the step that failed (upload, poll, generate, parse).
	Operation string

	// Err is the classified underlying error.
	Err error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Model, e.Operation, e.Err)
}

// Unwrap returns the underlying error for errors.Is / errors.As.
func (e *BackendError) Unwrap() error { return e.Err }

// NewBackendError creates a BackendError with the given details.
func NewBackendError(model, operation string, err error) *BackendError {
	return &BackendError{Model: model, Operation: operation, Err: err}
}
