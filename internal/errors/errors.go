// Package errors defines the categorized errors shared by every pojotyper
// stage and renders them for people.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel causes wrapped by AppError
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrNoInput         = errors.New("no input provided: pass JSON files, pipe JSON to stdin or pick a collection")
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrNoOutput        = errors.New("no document produced any output")
	ErrTooDeep         = errors.New("JSON nesting exceeds the parser limit")
)

// ErrorType names the stage an error came from
type ErrorType string

const (
	ErrorTypeInput    ErrorType = "input"
	ErrorTypeParsing  ErrorType = "parsing"
	ErrorTypeAnalysis ErrorType = "analysis"
	ErrorTypeGenerate ErrorType = "generate"
	ErrorTypeFormat   ErrorType = "format"
	ErrorTypeOutput   ErrorType = "output"
	ErrorTypeStorage  ErrorType = "storage"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// labels prefix the message of an AppError shown to users.
var labels = map[ErrorType]string{
	ErrorTypeInput:    "Input error",
	ErrorTypeParsing:  "JSON parsing error",
	ErrorTypeAnalysis: "Shape analysis error",
	ErrorTypeGenerate: "Code generation error",
	ErrorTypeFormat:   "Code formatting error",
	ErrorTypeOutput:   "Output error",
	ErrorTypeStorage:  "Collections error",
	ErrorTypeConfig:   "Configuration error",
}

// hints replace bare sentinel errors, checked in order.
var hints = []struct {
	err  error
	text string
}{
	{ErrEmptyInput, "The input is empty. Please provide valid JSON data."},
	{ErrInvalidJSON, "The input contains invalid JSON. Please check your JSON syntax."},
	{ErrFileNotFound, "The specified file could not be found. Please check the file path."},
	{ErrFileEmpty, "The specified file is empty. Please provide a file with valid JSON content."},
	{ErrNoInput, "No input provided. Pass JSON files, pipe JSON to stdin or use --collection."},
	{ErrInvalidFilePath, "Invalid file path. Please provide a valid file path."},
	{ErrNoOutput, "None of the documents could be processed."},
	{ErrTooDeep, "The JSON is nested too deeply to process."},
}

// AppError carries the failing stage, a message for users and the cause
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any *AppError of the same Type, so callers can test the stage
// with errors.Is(err, &AppError{Type: ErrorTypeStorage}).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Type == t.Type
}

func newError(t ErrorType, message string, err error) *AppError {
	return &AppError{Type: t, Message: message, Err: err}
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return newError(ErrorTypeInput, message, err)
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return newError(ErrorTypeParsing, message, err)
}

// NewAnalysisError creates a new error related to shape analysis
func NewAnalysisError(message string, err error) *AppError {
	return newError(ErrorTypeAnalysis, message, err)
}

// NewGenerateError creates a new error related to code generation
func NewGenerateError(message string, err error) *AppError {
	return newError(ErrorTypeGenerate, message, err)
}

// NewFormatError creates a new error related to code formatting
func NewFormatError(message string, err error) *AppError {
	return newError(ErrorTypeFormat, message, err)
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return newError(ErrorTypeOutput, message, err)
}

// NewStorageError creates a new error related to the collections store
func NewStorageError(message string, err error) *AppError {
	return newError(ErrorTypeStorage, message, err)
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return newError(ErrorTypeConfig, message, err)
}

// TypeOf returns the stage of the outermost AppError in err's chain, or
// ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// UserFriendlyError renders err for the terminal. AppErrors show their stage
// label and message; bare sentinels get a hint.
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		label, ok := labels[appErr.Type]
		if !ok {
			label = "Error"
		}
		return label + ": " + appErr.Message
	}

	for _, h := range hints {
		if errors.Is(err, h.err) {
			return "Error: " + h.text
		}
	}
	return fmt.Sprintf("Error: %v", err)
}
