package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/itsiops/splunk-itsi-mcp-server/internal/client"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/itsi"
)

// VisualizeServiceHealthTool generates an HTML bar chart of ITSI service
// health scores
type VisualizeServiceHealthTool struct {
	*BaseTool
}

// NewVisualizeServiceHealthTool creates a new tool instance
func NewVisualizeServiceHealthTool(client *client.Client, logger *zap.Logger) *VisualizeServiceHealthTool {
	return &VisualizeServiceHealthTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name
func (t *VisualizeServiceHealthTool) Name() string {
	return "visualize_service_health"
}

// Description returns the tool description
func (t *VisualizeServiceHealthTool) Description() string {
	return "Generate a standalone HTML bar chart visualizing the health scores of all ITSI services"
}

// Annotations returns tool hints for LLMs
func (t *VisualizeServiceHealthTool) Annotations() *mcp.ToolAnnotations {
	return ReadOnlyAnnotations("Visualize Service Health")
}

// InputSchema returns the input schema
func (t *VisualizeServiceHealthTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
		"required":   []string{},
	}
}

// DefaultTimeout returns the recommended timeout
func (t *VisualizeServiceHealthTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute executes the tool and returns the chart document as a string
func (t *VisualizeServiceHealthTool) Execute(ctx context.Context, _ map[string]interface{}) (*mcp.CallToolResult, error) {
	body, err := t.ExecuteRaw(ctx, &client.Request{
		Method: "GET",
		Path:   itsi.ServicesPath,
	})
	if err != nil {
		return ToolResultFromError(err), nil
	}

	services, err := itsi.ParseServiceHealth(body)
	if err != nil {
		return ToolResultFromError(err), nil
	}

	doc, err := itsi.RenderHealthChart(services)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	return t.FormatDocument(doc)
}
