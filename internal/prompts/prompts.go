// Package prompts provides pre-built prompts for common Splunk ITSI operations.
//
// Terminology Note: "ITSI" and "IT Service Intelligence" refer to the same
// Splunk premium app. Users may use either term when referring to service
// monitoring.
package prompts

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// PromptDefinition represents a prompt with its metadata and handler
type PromptDefinition struct {
	// Prompt is the MCP prompt metadata
	Prompt *mcp.Prompt
	// Handler is the function that generates the prompt content
	Handler mcp.PromptHandler
}

// Registry holds all registered prompts
type Registry struct {
	logger  *zap.Logger
	prompts []*PromptDefinition
}

// NewRegistry creates a new prompt registry with all available prompts
func NewRegistry(logger *zap.Logger) *Registry {
	r := &Registry{
		logger: logger,
	}
	r.registerPrompts()
	return r
}

// GetPrompts returns all registered prompt definitions
func (r *Registry) GetPrompts() []*PromptDefinition {
	return r.prompts
}

// registerPrompts registers all available prompts
func (r *Registry) registerPrompts() {
	r.prompts = []*PromptDefinition{
		r.triageServiceHealthPrompt(),
		r.investigateServicePrompt(),
		r.buildSearchPrompt(),
	}
}

// Helper to create a prompt result with user role
func createPromptResult(description, content string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: content,
				},
			},
		},
	}
}

// getStringArg safely extracts a string argument with a default value
func getStringArg(args map[string]string, key, defaultVal string) string {
	if val, ok := args[key]; ok && val != "" {
		return val
	}
	return defaultVal
}

// triageServiceHealthPrompt creates the "triage_service_health" prompt definition
func (r *Registry) triageServiceHealthPrompt() *PromptDefinition {
	return &PromptDefinition{
		Prompt: &mcp.Prompt{
			Name:        "triage_service_health",
			Title:       "Triage Service Health",
			Description: "Guide through triaging degraded ITSI services",
			Arguments:   []*mcp.PromptArgument{},
		},
		Handler: func(_ context.Context, _ *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			content := `Let's triage the current health of your ITSI services. I'll help you:

1. **Get the service analyzer view** to see every service's health score
2. **Identify critical services** (health score below 60)
3. **Visualize the landscape** as a chart for a quick overview
4. **Drill into the worst offenders** with targeted searches

To get started, please use these tools in sequence:

1. First, run: get_service_analyzer_view to list all services and scores
2. Then, run: visualize_service_health to get a bar chart of the landscape
3. For each critical service, run: run_splunk_search with a query like
   "search index=itsi_summary alert_severity=* serviceid=<id> | head 20"
4. Check: get_splunk_indexes to confirm which indexes hold the source data

I'll help you correlate low health scores with the underlying KPI data to identify the root cause.`

			return createPromptResult("Triage service health workflow", content), nil
		},
	}
}

// investigateServicePrompt creates the "investigate_service" prompt definition
func (r *Registry) investigateServicePrompt() *PromptDefinition {
	return &PromptDefinition{
		Prompt: &mcp.Prompt{
			Name:        "investigate_service",
			Title:       "Investigate a Service",
			Description: "Systematic investigation workflow for a single ITSI service",
			Arguments: []*mcp.PromptArgument{
				{
					Name:        "service_name",
					Description: "Name of the ITSI service to investigate",
					Required:    false,
				},
				{
					Name:        "time_range",
					Description: "Time range to investigate (e.g., '-1h', '-24h')",
					Required:    false,
				},
			},
		},
		Handler: func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			serviceName := getStringArg(req.Params.Arguments, "service_name", "your-service")
			timeRange := getStringArg(req.Params.Arguments, "time_range", "-1h")

			content := fmt.Sprintf(`I'll help you investigate the "%s" service systematically:

**Step 1: Confirm Current Health**
- Use: get_service_analyzer_view
- Find "%s" in the list and note its health score and status

**Step 2: Pull Recent KPI Data**
- Use: run_splunk_search
- Query: "search index=itsi_summary serviceid=* kpi=* earliest=%s | stats avg(alert_value) by kpi"
- Look for KPIs trending outside their thresholds

**Step 3: Check Episode and Alert Activity**
- Use: run_splunk_search
- Query: "search index=itsi_tracked_alerts earliest=%s | stats count by severity, source"

**Step 4: Correlate with Raw Events**
- Use: get_splunk_indexes to find the indexes feeding the service's KPIs
- Search those indexes around the time the score dropped

Based on the findings, I'll help you identify whether the degradation comes from a KPI threshold breach, missing data, or an upstream dependency.`, serviceName, serviceName, timeRange, timeRange)

			return createPromptResult("Investigate service workflow", content), nil
		},
	}
}

// buildSearchPrompt creates the "build_spl_search" prompt definition
func (r *Registry) buildSearchPrompt() *PromptDefinition {
	return &PromptDefinition{
		Prompt: &mcp.Prompt{
			Name:        "build_spl_search",
			Title:       "Build an SPL Search",
			Description: "Help constructing an SPL query and running it safely",
			Arguments: []*mcp.PromptArgument{
				{
					Name:        "goal",
					Description: "What the search should answer (e.g., 'error rate by host')",
					Required:    false,
				},
			},
		},
		Handler: func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			goal := getStringArg(req.Params.Arguments, "goal", "your question")

			content := fmt.Sprintf(`Let's build an SPL search that answers: %s

**Step 1: Pick the Index**
- Use: get_splunk_indexes to see what data is available
- Internal Splunk data lives in _internal; ITSI summary data in itsi_summary

**Step 2: Draft the Query**
SPL building blocks, in pipeline order:
- "search index=<name> <filters>" to select events
- "| stats count by <field>" for aggregation
- "| head N" or "| tail N" to bound the output
- "| table field1, field2" to shape columns

Example: "search index=_internal log_level=ERROR | stats count by component | head 10"

**Step 3: Run It**
- Use: run_splunk_search with your query and a sensible max_results
- Start narrow (head 10) and widen once the shape looks right

**Step 4: Iterate**
Searches that return nothing usually have a wrong index or an unbounded
time range. Add "earliest=-1h" to scope recent events first.

Tell me what you want to measure and I'll draft the query.`, goal)

			return createPromptResult("Build SPL search workflow", content), nil
		},
	}
}
