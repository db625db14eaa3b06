package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/itsiops/splunk-itsi-mcp-server/internal/client"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/itsi"
)

// GetServiceAnalyzerViewTool retrieves the high-level service health view
// from the ITSI Service Analyzer
type GetServiceAnalyzerViewTool struct {
	*BaseTool
}

// NewGetServiceAnalyzerViewTool creates a new tool instance
func NewGetServiceAnalyzerViewTool(client *client.Client, logger *zap.Logger) *GetServiceAnalyzerViewTool {
	return &GetServiceAnalyzerViewTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name
func (t *GetServiceAnalyzerViewTool) Name() string {
	return "get_service_analyzer_view"
}

// Description returns the tool description
func (t *GetServiceAnalyzerViewTool) Description() string {
	return "Retrieve the high-level service health view from the ITSI Service Analyzer"
}

// Annotations returns tool hints for LLMs
func (t *GetServiceAnalyzerViewTool) Annotations() *mcp.ToolAnnotations {
	return ReadOnlyAnnotations("Get Service Analyzer View")
}

// InputSchema returns the input schema
func (t *GetServiceAnalyzerViewTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
		"required":   []string{},
	}
}

// DefaultTimeout returns the recommended timeout
func (t *GetServiceAnalyzerViewTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute executes the tool
func (t *GetServiceAnalyzerViewTool) Execute(ctx context.Context, _ map[string]interface{}) (*mcp.CallToolResult, error) {
	body, err := t.ExecuteRaw(ctx, &client.Request{
		Method: "GET",
		Path:   itsi.ServiceAnalyzerPath,
	})
	if err != nil {
		return ToolResultFromError(err), nil
	}

	services, err := itsi.ParseServiceHealth(body)
	if err != nil {
		return ToolResultFromError(err), nil
	}

	// An empty service list is a valid, empty view
	return t.FormatResponse(map[string]interface{}{
		"services": services,
		"count":    len(services),
	})
}

// ListITSIServicesTool lists ITSI services with their shaped health records
type ListITSIServicesTool struct {
	*BaseTool
}

// NewListITSIServicesTool creates a new tool instance
func NewListITSIServicesTool(client *client.Client, logger *zap.Logger) *ListITSIServicesTool {
	return &ListITSIServicesTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name
func (t *ListITSIServicesTool) Name() string {
	return "list_itsi_services"
}

// Description returns the tool description
func (t *ListITSIServicesTool) Description() string {
	return "List ITSI services with their health scores and status"
}

// Annotations returns tool hints for LLMs
func (t *ListITSIServicesTool) Annotations() *mcp.ToolAnnotations {
	return ReadOnlyAnnotations("List ITSI Services")
}

// InputSchema returns the input schema
func (t *ListITSIServicesTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
		"required":   []string{},
	}
}

// DefaultTimeout returns the recommended timeout
func (t *ListITSIServicesTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute executes the tool
func (t *ListITSIServicesTool) Execute(ctx context.Context, _ map[string]interface{}) (*mcp.CallToolResult, error) {
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

	return t.FormatResponse(map[string]interface{}{
		"services": services,
		"count":    len(services),
	})
}
