// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid trade requests and configuration
//   - Session start errors (200-299): The remote service rejected or failed the start call
//   - Stream decode errors (300-399): A single stream message could not be decoded
//   - Connection errors (400-499): Transport level failures on the stream connection
//   - Lifecycle errors (500-599): Illegal session status transitions and teardown races
//   - Config and report errors (600-699): Loading configuration and exporting session reports
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeUnknownEventType, "unknown event type %q", kind)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeRequestFailed, "start request failed", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeTerminalState) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTeardownRace marks an event that resolved after the session was torn down.
// It is used internally to drop stale callbacks and is never returned to callers.
var ErrTeardownRace = New(ErrCodeTeardownRace, "event arrived after teardown")

// coded is implemented by every error type in this package.
type coded interface {
	ErrCode() ErrorCode
}

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrCode returns the error code.
func (e *Error) ErrCode() ErrorCode {
	return e.Code
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from the first coded error in err's chain.
// Returns ErrCodeUnknown if no error in the chain carries a code.
func GetCode(err error) ErrorCode {
	var c coded
	if errors.As(err, &c) {
		return c.ErrCode()
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// FieldError is a single field level message, either from local validation
// or from the structured error body returned by the remote service.
type FieldError struct {
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

// String renders the field error as "field: message".
func (f FieldError) String() string {
	if f.Field == "" {
		return f.Message
	}

	return f.Field + ": " + f.Message
}

func joinFields(fields []FieldError) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.String())
	}

	return strings.Join(parts, "; ")
}

// ValidationError is returned when a request fails local validation.
// Requests that fail validation are never sent.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string, fields ...FieldError) *ValidationError {
	return &ValidationError{
		Message: message,
		Fields:  fields,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("[%d] %s", e.ErrCode(), e.Message)
	}

	return fmt.Sprintf("[%d] %s: %s", e.ErrCode(), e.Message, joinFields(e.Fields))
}

// ErrCode returns ErrCodeInvalidTradeRequest.
func (e *ValidationError) ErrCode() ErrorCode {
	return ErrCodeInvalidTradeRequest
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var validationErr *ValidationError

	return errors.As(err, &validationErr)
}

// SessionStartError is returned when the remote service rejects the start call,
// or when the call could not be completed at all.
type SessionStartError struct {
	// StatusCode is the HTTP status code, zero when no response was received.
	StatusCode int
	// Status is the raw status text, e.g. "422 Unprocessable Entity".
	Status string
	// Fields holds the structured field level messages from the response body.
	Fields []FieldError
	// Message is the plain message from the response body, if any.
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SessionStartError) Error() string {
	detail := e.Detail()
	if e.Cause != nil {
		return fmt.Sprintf("[%d] session start failed: %s: %v", e.ErrCode(), detail, e.Cause)
	}

	return fmt.Sprintf("[%d] session start failed: %s", e.ErrCode(), detail)
}

// Detail returns the most specific human readable reason available:
// field messages first, then the plain message, then the raw status text.
func (e *SessionStartError) Detail() string {
	switch {
	case len(e.Fields) > 0:
		return joinFields(e.Fields)
	case e.Message != "":
		return e.Message
	case e.Status != "":
		return e.Status
	case e.Cause != nil:
		return "request failed"
	default:
		return "unknown error"
	}
}

// Unwrap returns the underlying error cause.
func (e *SessionStartError) Unwrap() error {
	return e.Cause
}

// ErrCode returns ErrCodeSessionStartRejected when the server answered,
// ErrCodeSessionStartFailed otherwise.
func (e *SessionStartError) ErrCode() ErrorCode {
	if e.StatusCode > 0 {
		return ErrCodeSessionStartRejected
	}

	return ErrCodeSessionStartFailed
}

// IsSessionStartError checks if an error is a SessionStartError.
func IsSessionStartError(err error) bool {
	var startErr *SessionStartError

	return errors.As(err, &startErr)
}

// DecodeError describes a single stream payload that could not be decoded.
// The payload is dropped and the session continues.
type DecodeError struct {
	Code ErrorCode
	// Index is the position inside a batch frame, -1 for the frame itself.
	Index  int
	Reason string
	// Raw is a truncated copy of the offending payload for logging.
	Raw string
}

const maxRawLength = 256

// NewDecodeError creates a new DecodeError, truncating raw to a loggable size.
func NewDecodeError(code ErrorCode, index int, reason string, raw []byte) *DecodeError {
	snippet := string(raw)
	if len(snippet) > maxRawLength {
		snippet = snippet[:maxRawLength] + "..."
	}

	return &DecodeError{
		Code:   code,
		Index:  index,
		Reason: reason,
		Raw:    snippet,
	}
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("[%d] decode failed: %s", e.Code, e.Reason)
	}

	return fmt.Sprintf("[%d] decode failed at index %d: %s", e.Code, e.Index, e.Reason)
}

// ErrCode returns the error code.
func (e *DecodeError) ErrCode() ErrorCode {
	return e.Code
}

// IsDecodeError checks if an error is a DecodeError.
func IsDecodeError(err error) bool {
	var decodeErr *DecodeError

	return errors.As(err, &decodeErr)
}

// ConnectionError is a transport level failure on the stream connection.
// It is recovered by a scheduled reconnect unless the session is terminal.
type ConnectionError struct {
	URL     string
	Attempt int
	Cause   error
}

// NewConnectionError creates a new ConnectionError.
func NewConnectionError(url string, attempt int, cause error) *ConnectionError {
	return &ConnectionError{
		URL:     url,
		Attempt: attempt,
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("[%d] connection to %s failed (attempt %d): %v", e.ErrCode(), e.URL, e.Attempt, e.Cause)
}

// Unwrap returns the underlying error cause.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// ErrCode returns ErrCodeConnectionFailed.
func (e *ConnectionError) ErrCode() ErrorCode {
	return ErrCodeConnectionFailed
}

// IsConnectionError checks if an error is a ConnectionError.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError

	return errors.As(err, &connErr)
}

// UserMessage returns the message shown next to a failed session status.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		if len(validationErr.Fields) > 0 {
			return joinFields(validationErr.Fields)
		}

		return validationErr.Message
	}

	var startErr *SessionStartError
	if errors.As(err, &startErr) {
		return startErr.Detail()
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}

	return err.Error()
}
