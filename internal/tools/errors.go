package tools

import (
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	splunkerr "github.com/itsiops/splunk-itsi-mcp-server/internal/errors"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/security"
)

// NewToolResultError creates a new tool result with an error message
func NewToolResultError(message string) *mcp.CallToolResult {
	if message == "" {
		message = "An unknown error occurred"
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: message,
			},
		},
		IsError: true,
	}
}

// NewToolResultErrorWithSuggestion creates a tool result with an error and recovery guidance
func NewToolResultErrorWithSuggestion(message, suggestion string) *mcp.CallToolResult {
	fullMessage := fmt.Sprintf("%s\n\nSuggestion: %s", message, suggestion)
	return NewToolResultError(fullMessage)
}

// ToolResultFromError converts an error into a structured error result.
// SplunkErrors keep their kind, message, and suggestion; nothing crosses the
// tool boundary as an unformatted failure.
func ToolResultFromError(err error) *mcp.CallToolResult {
	var se *splunkerr.SplunkError
	if errors.As(err, &se) {
		message := fmt.Sprintf("[%s] %s", se.Code, se.Message)
		if se.Suggestion != "" {
			return NewToolResultErrorWithSuggestion(message, se.Suggestion)
		}
		return NewToolResultError(message)
	}
	return NewToolResultError(security.SanitizeError(err))
}
