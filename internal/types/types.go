// Package types defines the shared configuration and error types for the
// PDF translator.
package types

// Config holds the full configuration surface consumed by the pipeline.
type Config struct {
	OpenAIAPIKey  string   `json:"openai_api_key"`
	OpenAIBaseURL string   `json:"openai_base_url"` // base URL of an OpenAI-compatible API
	OpenAIModel   string   `json:"openai_model"`
	Temperature   *float32 `json:"temperature,omitempty"` // optional sampling temperature override

	LangIn  string `json:"lang_in"`  // default source language code
	LangOut string `json:"lang_out"` // default target language code

	Concurrency   int    `json:"concurrency"`    // max in-flight translation requests
	CachePath     string `json:"cache_path"`     // translation cache file; empty = in-memory only
	WorkspaceRoot string `json:"workspace_root"` // directory relative input/output paths resolve against
	LayoutModel   string `json:"layout_model"`   // path to the DocLayout ONNX model
	MaxDurationS  int    `json:"max_duration_s"` // default per-run deadline in seconds, 0 = none
}

// ErrorCode classifies application-level failures.
type ErrorCode string

const (
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrUnsupported  ErrorCode = "UNSUPPORTED_LANGUAGE"
	ErrConfig       ErrorCode = "CONFIG_ERROR"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError is the tool-level error type. Only these errors abort a
// translate call before the pipeline starts; everything downstream
// degrades to a fallback instead.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}
