// Package errors provides structured error handling for the application.
// It defines AppError type with error codes so stage failures can be
// classified without matching on message strings.
package errors

import (
	"errors"
	"fmt"
)

// Error codes organized by category
const (
	// General and setup errors (1000-1099)
	CodeSuccess             = 0
	CodeUnknown             = 1000
	CodeInvalidParams       = 1001
	CodeNotFound            = 1002
	CodeConfigInvalid       = 1003
	CodeMissingCredential   = 1004
	CodeMoviesDirUnreadable = 1005
	CodeAlreadyRunning      = 1006

	// Media tool errors (1100-1199)
	CodeProbeFailed      = 1100
	CodeMediaToolMissing = 1101
	CodeVerticalFailed   = 1102

	// Scraping errors (1200-1299)
	CodeScrapeFailed   = 1200
	CodeScriptNotFound = 1201
	CodeScriptTooShort = 1202

	// LLM errors (1300-1399)
	CodeLLMRequestFailed = 1300
	CodeLLMBadResponse   = 1301

	// TTS errors (1400-1499)
	CodeTTSFailed      = 1400
	CodeTTSEmptyAudio  = 1401
	CodeAudioMixFailed = 1402

	// Storage errors (1500-1599)
	CodeDBError        = 1500
	CodeFileNotFound   = 1501
	CodeFileWriteError = 1502

	// Movie stage errors (1600-1699)
	CodeSubtitleNotFound   = 1600
	CodeTimestampConvert   = 1601
	CodePlanFailed         = 1602
	CodePlanEmpty          = 1603
	CodeNoClipsSynthesized = 1604
	CodeConcatFailed       = 1605
	CodeFinalizeFailed     = 1606

	// Clip errors (1700-1799)
	CodeInvalidSegment = 1700
	CodeRenderFailed   = 1701
)

// AppError represents a structured application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps an error with additional detail
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Predefined common errors
var (
	ErrInvalidParams       = New(CodeInvalidParams, "Invalid parameters")
	ErrNotFound            = New(CodeNotFound, "Resource not found")
	ErrMissingCredential   = New(CodeMissingCredential, "Missing API credential")
	ErrMoviesDirUnreadable = New(CodeMoviesDirUnreadable, "Movies directory unreadable")
	ErrAlreadyRunning      = New(CodeAlreadyRunning, "Batch already running")

	// Media
	ErrProbeFailed      = New(CodeProbeFailed, "Media probe failed")
	ErrMediaToolMissing = New(CodeMediaToolMissing, "ffmpeg or ffprobe not found")

	// Scraping
	ErrScriptNotFound = New(CodeScriptNotFound, "Script not found")
	ErrScriptTooShort = New(CodeScriptTooShort, "Script text too short")

	// TTS
	ErrTTSFailed     = New(CodeTTSFailed, "TTS failed")
	ErrTTSEmptyAudio = New(CodeTTSEmptyAudio, "TTS returned empty audio")

	// Storage
	ErrDBError      = New(CodeDBError, "Database error")
	ErrFileNotFound = New(CodeFileNotFound, "File not found")

	// Movie stages
	ErrSubtitleNotFound   = New(CodeSubtitleNotFound, "Subtitle not found")
	ErrPlanEmpty          = New(CodePlanEmpty, "Clip plan has no usable entries")
	ErrNoClipsSynthesized = New(CodeNoClipsSynthesized, "No clips synthesized")

	// Clips
	ErrInvalidSegment = New(CodeInvalidSegment, "Invalid segment")
)
