package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/itsiops/splunk-itsi-mcp-server/internal/client"
	splunkerr "github.com/itsiops/splunk-itsi-mcp-server/internal/errors"
)

// BaseTool provides common functionality for all tools
type BaseTool struct {
	client *client.Client
	logger *zap.Logger
}

// NewBaseTool creates a new base tool
func NewBaseTool(client *client.Client, logger *zap.Logger) *BaseTool {
	return &BaseTool{
		client: client,
		logger: logger,
	}
}

// ExecuteJSON executes an API request and returns the parsed JSON object
func (t *BaseTool) ExecuteJSON(ctx context.Context, req *client.Request) (map[string]interface{}, error) {
	return t.client.DoJSON(ctx, req)
}

// ExecuteRaw executes an API request and returns the raw body of a
// successful response. ITSI endpoints that return top-level JSON arrays go
// through this path since they don't fit a map.
func (t *BaseTool) ExecuteRaw(ctx context.Context, req *client.Request) ([]byte, error) {
	resp, err := t.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, splunkerr.FromHTTPStatus(resp.StatusCode, string(resp.Body))
	}
	return resp.Body, nil
}

// FormatResponse formats a result value as pretty-printed JSON text content
func (t *BaseTool) FormatResponse(result interface{}) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return NewToolResultError(fmt.Sprintf("failed to format response: %v", err)), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: string(jsonBytes),
			},
		},
	}, nil
}

// FormatDocument returns a document (e.g. HTML) verbatim as text content
func (t *BaseTool) FormatDocument(doc string) (*mcp.CallToolResult, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: doc,
			},
		},
	}, nil
}
