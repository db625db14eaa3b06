package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormat(t *testing.T) {
	err := New(CodeAPIError, ExternalError, "something broke")
	assert.Equal(t, "[API_ERROR] EXTERNAL_ERROR: something broke", err.Error())
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewConnectionError(cause)

	assert.ErrorIs(t, err, cause)

	var se *SplunkError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, CodeConnectionError, se.Code)
}

func TestFromHTTPStatus(t *testing.T) {
	tests := []struct {
		name         string
		statusCode   int
		expectedCode Code
		expectedCat  Category
	}{
		{
			name:         "401 maps to authentication failure",
			statusCode:   401,
			expectedCode: CodeAuthenticationFailed,
			expectedCat:  ClientError,
		},
		{
			name:         "403 maps to authentication failure",
			statusCode:   403,
			expectedCode: CodeAuthenticationFailed,
			expectedCat:  ClientError,
		},
		{
			name:         "404 maps to API error",
			statusCode:   404,
			expectedCode: CodeAPIError,
			expectedCat:  ExternalError,
		},
		{
			name:         "500 maps to API error",
			statusCode:   500,
			expectedCode: CodeAPIError,
			expectedCat:  ExternalError,
		},
		{
			name:         "503 maps to API error",
			statusCode:   503,
			expectedCode: CodeAPIError,
			expectedCat:  ExternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromHTTPStatus(tt.statusCode, `{"messages":[]}`)
			assert.Equal(t, tt.expectedCode, err.Code)
			assert.Equal(t, tt.expectedCat, err.Category)
			assert.Equal(t, tt.statusCode, err.Details["status_code"])
		})
	}
}

func TestIsCode(t *testing.T) {
	err := NewSearchTimeout("sid-123", "60s")

	assert.True(t, IsCode(err, CodeSearchTimeout))
	assert.False(t, IsCode(err, CodeAPIError))
	assert.False(t, IsCode(fmt.Errorf("plain error"), CodeSearchTimeout))
	assert.False(t, IsCode(nil, CodeSearchTimeout))

	// Wrapped SplunkErrors are still found
	wrapped := fmt.Errorf("tool failed: %w", err)
	assert.True(t, IsCode(wrapped, CodeSearchTimeout))
}

func TestSearchTimeoutCarriesSID(t *testing.T) {
	err := NewSearchTimeout("scheduler__1234.5678", "30s")

	assert.Equal(t, "scheduler__1234.5678", err.Details["sid"])
	assert.Contains(t, err.Message, "30s")
	assert.NotEmpty(t, err.Suggestion)
}

func TestSearchExecutionFailedCarriesSID(t *testing.T) {
	err := NewSearchExecutionFailed("sid-9", "Unknown search command 'frobnicate'")

	assert.Equal(t, CodeSearchExecutionFailed, err.Code)
	assert.Equal(t, "sid-9", err.Details["sid"])
	assert.Contains(t, err.Message, "frobnicate")
}

func TestSearchSubmissionFailed(t *testing.T) {
	err := NewSearchSubmissionFailed("Error in 'search' command")

	assert.Equal(t, CodeSearchSubmissionFailed, err.Code)
	assert.Equal(t, ClientError, err.Category)
	assert.Contains(t, err.Message, "Error in 'search' command")
}

func TestToJSON(t *testing.T) {
	err := NewInvalidInput("query must not be empty")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(err.ToJSON()), &decoded))

	assert.Equal(t, string(CodeInvalidInput), decoded["code"])
	assert.Equal(t, string(ClientError), decoded["category"])
	assert.Equal(t, "query must not be empty", decoded["message"])
}

func TestWithDetailsAndSuggestion(t *testing.T) {
	err := New(CodeInternalError, ServerError, "boom").
		WithDetails(map[string]interface{}{"component": "runner"}).
		WithSuggestion("file a bug")

	assert.Equal(t, "runner", err.Details["component"])
	assert.Equal(t, "file a bug", err.Suggestion)
}
