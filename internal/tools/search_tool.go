package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/itsiops/splunk-itsi-mcp-server/internal/client"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/config"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/search"
)

// RunSplunkSearchTool executes an SPL query through the search job lifecycle
type RunSplunkSearchTool struct {
	*BaseTool
	runner *search.Runner
	cfg    *config.Config
}

// NewRunSplunkSearchTool creates a new tool instance
func NewRunSplunkSearchTool(client *client.Client, cfg *config.Config, logger *zap.Logger) *RunSplunkSearchTool {
	return &RunSplunkSearchTool{
		BaseTool: NewBaseTool(client, logger),
		runner:   search.NewRunner(client, logger),
		cfg:      cfg,
	}
}

// Name returns the tool name
func (t *RunSplunkSearchTool) Name() string {
	return "run_splunk_search"
}

// Description returns the tool description
func (t *RunSplunkSearchTool) Description() string {
	return "Execute a Splunk search query (SPL) and return the results (e.g. \"search index=_internal | head 10\")"
}

// Annotations returns tool hints for LLMs
func (t *RunSplunkSearchTool) Annotations() *mcp.ToolAnnotations {
	return QueryAnnotations("Run Splunk Search")
}

// InputSchema returns the input schema
func (t *RunSplunkSearchTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "The SPL query to execute (e.g., \"search index=_internal | head 10\")",
			},
			"max_results": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of result rows to return (default 100)",
			},
		},
		"required": []string{"query"},
	}
}

// DefaultTimeout returns the recommended timeout. The search poll loop needs
// headroom beyond the per-request HTTP timeout.
func (t *RunSplunkSearchTool) DefaultTimeout() time.Duration {
	return t.cfg.SearchMaxWait + 30*time.Second
}

// Execute executes the tool
func (t *RunSplunkSearchTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	query, err := GetStringParam(arguments, "query", true)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	maxResults, err := GetIntParam(arguments, "max_results", false)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	if maxResults <= 0 {
		maxResults = t.cfg.SearchMaxResults
	}
	if maxResults > config.MaxSearchResultsCap {
		maxResults = config.MaxSearchResultsCap
	}

	rows, err := t.runner.Run(ctx, query, search.Options{
		MaxWait:      t.cfg.SearchMaxWait,
		PollInterval: t.cfg.SearchPollInterval,
		MaxResults:   maxResults,
	})
	if err != nil {
		return ToolResultFromError(err), nil
	}

	// Rows pass through as returned, in Splunk's order
	return t.FormatResponse(map[string]interface{}{
		"results": rows,
		"count":   len(rows),
	})
}
