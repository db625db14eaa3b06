// Package errors defines the structured error taxonomy for Splunk operations.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Category classifies the origin of an error
type Category string

const (
	// ClientError indicates the error was caused by the caller (bad input, bad credentials)
	ClientError Category = "CLIENT_ERROR"
	// ServerError indicates the error originated inside this server
	ServerError Category = "SERVER_ERROR"
	// ExternalError indicates the error was reported by or on the way to Splunk
	ExternalError Category = "EXTERNAL_ERROR"
)

// Code identifies the kind of failure
type Code string

const (
	// CodeAuthenticationFailed covers HTTP 401/403 from Splunk
	CodeAuthenticationFailed Code = "AUTHENTICATION_FAILED"
	// CodeConnectionError covers timeouts, DNS and other network failures
	CodeConnectionError Code = "CONNECTION_ERROR"
	// CodeAPIError covers any other non-2xx response, carrying status and body
	CodeAPIError Code = "API_ERROR"
	// CodeParseError covers malformed JSON in an otherwise successful response
	CodeParseError Code = "PARSE_ERROR"

	// CodeSearchSubmissionFailed means Splunk rejected the search job (e.g. SPL syntax)
	CodeSearchSubmissionFailed Code = "SEARCH_SUBMISSION_FAILED"
	// CodeSearchExecutionFailed means the search job reached the Failed state
	CodeSearchExecutionFailed Code = "SEARCH_EXECUTION_FAILED"
	// CodeSearchTimeout means the job did not reach a terminal state within the wait budget
	CodeSearchTimeout Code = "SEARCH_TIMEOUT"

	// CodeInvalidInput covers bad tool arguments before any HTTP call is made
	CodeInvalidInput Code = "INVALID_INPUT"
	// CodeInternalError covers unexpected failures inside this server
	CodeInternalError Code = "INTERNAL_ERROR"
)

// SplunkError is a structured error with code, category, and recovery suggestion
type SplunkError struct {
	Code       Code                   `json:"code"`
	Category   Category               `json:"category"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Suggestion string                 `json:"suggestion,omitempty"`

	cause error
}

// Error implements the error interface
func (e *SplunkError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Category, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As
func (e *SplunkError) Unwrap() error {
	return e.cause
}

// ToJSON converts the error to a JSON string
func (e *SplunkError) ToJSON() string {
	bytes, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"code":%q,"category":%q,"message":%q}`, e.Code, e.Category, e.Message)
	}
	return string(bytes)
}

// New creates a new structured error
func New(code Code, category Category, message string) *SplunkError {
	return &SplunkError{
		Code:     code,
		Category: category,
		Message:  message,
	}
}

// WithDetails attaches detail fields to the error
func (e *SplunkError) WithDetails(details map[string]interface{}) *SplunkError {
	e.Details = details
	return e
}

// WithSuggestion attaches a recovery suggestion to the error
func (e *SplunkError) WithSuggestion(suggestion string) *SplunkError {
	e.Suggestion = suggestion
	return e
}

// WithCause records the underlying error for unwrapping
func (e *SplunkError) WithCause(cause error) *SplunkError {
	e.cause = cause
	return e
}

// IsCode reports whether err is a SplunkError with the given code
func IsCode(err error, code Code) bool {
	var se *SplunkError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// Common constructors

// NewAuthenticationFailed creates an authentication error (HTTP 401/403)
func NewAuthenticationFailed(statusCode int, body string) *SplunkError {
	return New(CodeAuthenticationFailed, ClientError, fmt.Sprintf("Splunk rejected the credentials (HTTP %d)", statusCode)).
		WithDetails(map[string]interface{}{
			"status_code": statusCode,
			"body":        body,
		}).
		WithSuggestion("Check SPLUNK_USERNAME/SPLUNK_PASSWORD (or SPLUNK_TOKEN) and the account's Splunk role")
}

// NewConnectionError creates a network-level error
func NewConnectionError(cause error) *SplunkError {
	return New(CodeConnectionError, ExternalError, fmt.Sprintf("could not reach Splunk: %v", cause)).
		WithCause(cause).
		WithSuggestion("Check SPLUNK_URL, the management port (default 8089), and network connectivity")
}

// NewAPIError creates an error for any other non-success response
func NewAPIError(statusCode int, body string) *SplunkError {
	return New(CodeAPIError, ExternalError, fmt.Sprintf("Splunk API error (HTTP %d)", statusCode)).
		WithDetails(map[string]interface{}{
			"status_code": statusCode,
			"body":        body,
		}).
		WithSuggestion("Check the Splunk server logs for details")
}

// NewParseError creates an error for malformed JSON in a 2xx response
func NewParseError(cause error) *SplunkError {
	return New(CodeParseError, ExternalError, fmt.Sprintf("failed to parse Splunk response: %v", cause)).
		WithCause(cause)
}

// NewSearchSubmissionFailed creates an error for a rejected search job
func NewSearchSubmissionFailed(detail string) *SplunkError {
	return New(CodeSearchSubmissionFailed, ClientError, fmt.Sprintf("Splunk rejected the search: %s", detail)).
		WithSuggestion("Check the SPL syntax; queries usually start with 'search' or '|'")
}

// NewSearchExecutionFailed creates an error for a job that reached the Failed state
func NewSearchExecutionFailed(sid, detail string) *SplunkError {
	return New(CodeSearchExecutionFailed, ExternalError, fmt.Sprintf("search job failed: %s", detail)).
		WithDetails(map[string]interface{}{"sid": sid})
}

// NewSearchTimeout creates an error for a job that exceeded the wait budget.
// The SID is included so the caller can inspect the job out-of-band.
func NewSearchTimeout(sid string, waited string) *SplunkError {
	return New(CodeSearchTimeout, ExternalError, fmt.Sprintf("search job did not complete within %s", waited)).
		WithDetails(map[string]interface{}{"sid": sid}).
		WithSuggestion("Narrow the search time range, or raise SPLUNK_SEARCH_MAX_WAIT")
}

// NewInvalidInput creates an error for bad tool arguments
func NewInvalidInput(message string) *SplunkError {
	return New(CodeInvalidInput, ClientError, message).
		WithSuggestion("Check the input parameters and try again")
}

// NewInternalError creates an error for unexpected internal failures
func NewInternalError(message string) *SplunkError {
	return New(CodeInternalError, ServerError, message)
}

// FromHTTPStatus translates a non-2xx Splunk response into the right error kind
func FromHTTPStatus(statusCode int, body string) *SplunkError {
	switch {
	case statusCode == 401 || statusCode == 403:
		return NewAuthenticationFailed(statusCode, body)
	default:
		return NewAPIError(statusCode, body)
	}
}
