package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/itsiops/splunk-itsi-mcp-server/internal/client"
)

// ServerInfoPath is the Splunk endpoint reporting instance information
const ServerInfoPath = "/services/server/info"

// GetSplunkServerInfoTool reports Splunk instance information (version, OS,
// server name). Also the endpoint the health checker probes.
type GetSplunkServerInfoTool struct {
	*BaseTool
}

// NewGetSplunkServerInfoTool creates a new tool instance
func NewGetSplunkServerInfoTool(client *client.Client, logger *zap.Logger) *GetSplunkServerInfoTool {
	return &GetSplunkServerInfoTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name
func (t *GetSplunkServerInfoTool) Name() string {
	return "get_splunk_server_info"
}

// Description returns the tool description
func (t *GetSplunkServerInfoTool) Description() string {
	return "Get Splunk server information including version, OS, and server name"
}

// Annotations returns tool hints for LLMs
func (t *GetSplunkServerInfoTool) Annotations() *mcp.ToolAnnotations {
	return ReadOnlyAnnotations("Get Splunk Server Info")
}

// InputSchema returns the input schema
func (t *GetSplunkServerInfoTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
		"required":   []string{},
	}
}

// DefaultTimeout returns the recommended timeout
func (t *GetSplunkServerInfoTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute executes the tool
func (t *GetSplunkServerInfoTool) Execute(ctx context.Context, _ map[string]interface{}) (*mcp.CallToolResult, error) {
	result, err := t.ExecuteJSON(ctx, &client.Request{
		Method: "GET",
		Path:   ServerInfoPath,
	})
	if err != nil {
		return ToolResultFromError(err), nil
	}

	// Strip the Atom envelope down to the content payload when present
	if entries, ok := result["entry"].([]interface{}); ok && len(entries) > 0 {
		if entry, ok := entries[0].(map[string]interface{}); ok {
			if content, ok := entry["content"].(map[string]interface{}); ok {
				return t.FormatResponse(content)
			}
		}
	}

	return t.FormatResponse(result)
}
