package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/itsiops/splunk-itsi-mcp-server/internal/client"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/itsi"
)

// GetSplunkIndexesTool retrieves the list of configured indexes
type GetSplunkIndexesTool struct {
	*BaseTool
}

// NewGetSplunkIndexesTool creates a new tool instance
func NewGetSplunkIndexesTool(client *client.Client, logger *zap.Logger) *GetSplunkIndexesTool {
	return &GetSplunkIndexesTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name
func (t *GetSplunkIndexesTool) Name() string {
	return "get_splunk_indexes"
}

// Description returns the tool description
func (t *GetSplunkIndexesTool) Description() string {
	return "Retrieve a list of all configured indexes in Splunk"
}

// Annotations returns tool hints for LLMs
func (t *GetSplunkIndexesTool) Annotations() *mcp.ToolAnnotations {
	return ReadOnlyAnnotations("Get Splunk Indexes")
}

// InputSchema returns the input schema
func (t *GetSplunkIndexesTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
		"required":   []string{},
	}
}

// DefaultTimeout returns the recommended timeout
func (t *GetSplunkIndexesTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute executes the tool
func (t *GetSplunkIndexesTool) Execute(ctx context.Context, _ map[string]interface{}) (*mcp.CallToolResult, error) {
	body, err := t.ExecuteRaw(ctx, &client.Request{
		Method: "GET",
		Path:   itsi.IndexesPath,
	})
	if err != nil {
		return ToolResultFromError(err), nil
	}

	names, err := itsi.ParseIndexNames(body)
	if err != nil {
		return ToolResultFromError(err), nil
	}

	// Zero indexes is an empty list, not an error
	return t.FormatResponse(map[string]interface{}{
		"indexes": names,
		"count":   len(names),
	})
}
