// Package resources provides MCP resource handlers for the Splunk ITSI server.
// Resources expose read-only data to MCP clients for context and status information.
package resources

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/itsiops/splunk-itsi-mcp-server/internal/audit"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/config"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/metrics"
)

// Registry holds all registered resources and their handlers
type Registry struct {
	config  *config.Config
	metrics *metrics.Metrics
	audit   *audit.Logger
	logger  *zap.Logger
	version string
}

// NewRegistry creates a new resource registry
func NewRegistry(cfg *config.Config, m *metrics.Metrics, auditLog *audit.Logger, logger *zap.Logger, version string) *Registry {
	return &Registry{
		config:  cfg,
		metrics: m,
		audit:   auditLog,
		logger:  logger,
		version: version,
	}
}

// RegisteredResource represents a resource with its definition and handler
type RegisteredResource struct {
	Resource *mcp.Resource
	Handler  mcp.ResourceHandler
}

// jsonResult marshals v and wraps it as a single-content resource read result
func (r *Registry) jsonResult(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		r.logger.Error("Failed to marshal resource content", zap.String("uri", uri), zap.Error(err))
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(content),
			},
		},
	}, nil
}

// GetResources returns all registered resources with their handlers
func (r *Registry) GetResources() []RegisteredResource {
	return []RegisteredResource{
		r.aboutResource(),
		r.configResource(),
		r.metricsResource(),
		r.healthResource(),
		r.auditResource(),
	}
}

// auditResource returns the audit://recent resource
func (r *Registry) auditResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "audit://recent",
			Name:        "audit://recent",
			Title:       "Recent Tool Activity",
			Description: "Recent tool executions with outcomes, durations, and search job IDs",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			stats := r.audit.GetStats()

			auditData := map[string]interface{}{
				"enabled": r.audit.IsEnabled(),
				"summary": map[string]interface{}{
					"total_entries":    stats.TotalEntries,
					"success_rate_pct": stats.SuccessRate,
					"average_duration": stats.AverageDuration.String(),
					"tool_usage":       stats.ToolUsage,
					"error_counts":     stats.ErrorCounts,
				},
				"recent":    r.audit.GetRecentEntries(25),
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			}

			return r.jsonResult("audit://recent", auditData)
		},
	}
}

// aboutResource returns the about://service resource with service aliases and description
func (r *Registry) aboutResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "about://service",
			Name:        "about://service",
			Title:       "About Splunk ITSI",
			Description: "Service information, aliases, and capabilities",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			aboutInfo := map[string]interface{}{
				"service": map[string]interface{}{
					"name":        "Splunk IT Service Intelligence",
					"description": "Service monitoring app on Splunk that scores service health from KPI searches",
					"aliases": []string{
						"Splunk ITSI",
						"ITSI",
						"IT Service Intelligence",
					},
				},
				"query_language": map[string]interface{}{
					"name":    "SPL",
					"type":    "Piped syntax search language",
					"example": "search index=_internal log_level=ERROR | stats count by component | head 10",
				},
				"health_scores": map[string]interface{}{
					"range":    "0-100",
					"critical": "below 60",
					"warning":  "60 to below 80",
					"healthy":  "80 and above",
				},
				"mcp_server": map[string]interface{}{
					"version":      r.version,
					"capabilities": []string{"tools", "prompts", "resources"},
				},
			}

			return r.jsonResult("about://service", aboutInfo)
		},
	}
}

// configResource returns the config://current resource
func (r *Registry) configResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "config://current",
			Name:        "config://current",
			Title:       "Server Configuration",
			Description: "Current Splunk ITSI MCP server configuration (sensitive values masked)",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			// Safe config representation; credentials never appear here
			safeConfig := map[string]interface{}{
				"splunk_url":           r.config.SplunkURL,
				"timeout":              r.config.Timeout.String(),
				"search_max_wait":      r.config.SearchMaxWait.String(),
				"search_poll_interval": r.config.SearchPollInterval.String(),
				"search_max_results":   r.config.SearchMaxResults,
				"rate_limit":           r.config.RateLimit,
				"rate_limit_burst":     r.config.RateLimitBurst,
				"rate_limit_enabled":   r.config.EnableRateLimit,
				"tls_verify":           r.config.TLSVerify,
				"tracing_enabled":      r.config.EnableTracing,
				"audit_log_enabled":    r.config.EnableAuditLog,
				"log_level":            r.config.LogLevel,
				"log_format":           r.config.LogFormat,
				"server_version":       r.version,
				"token_configured":     r.config.Token != "",
				"username_configured":  r.config.Username != "",
			}

			return r.jsonResult("config://current", safeConfig)
		},
	}
}

// metricsResource returns the metrics://server resource
func (r *Registry) metricsResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "metrics://server",
			Name:        "metrics://server",
			Title:       "Server Metrics",
			Description: "Operational metrics including request counts, latency, and tool usage statistics",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			stats := r.metrics.GetStats()

			metricsData := map[string]interface{}{
				"requests": map[string]interface{}{
					"total":      stats.TotalRequests,
					"successful": stats.SuccessfulRequests,
					"failed":     stats.FailedRequests,
				},
				"latency": map[string]interface{}{
					"average_ms": stats.AverageLatency.Milliseconds(),
					"max_ms":     stats.MaxLatency.Milliseconds(),
					"min_ms":     stats.MinLatency.Milliseconds(),
				},
				"errors_by_status": stats.ErrorsByStatus,
				"tools": map[string]interface{}{
					"usage":  stats.ToolUsage,
					"errors": stats.ToolErrors,
				},
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			}

			return r.jsonResult("metrics://server", metricsData)
		},
	}
}

// healthResource returns the health://status resource
func (r *Registry) healthResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "health://status",
			Name:        "health://status",
			Title:       "Health Status",
			Description: "Current health status of the MCP server and Splunk connectivity",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			// Derived from request metrics; the HTTP /health endpoint does
			// the live connectivity probe
			stats := r.metrics.GetStats()

			var status string
			var statusMessage string
			errorRate := float64(0)
			if stats.TotalRequests > 0 {
				errorRate = float64(stats.FailedRequests) / float64(stats.TotalRequests) * 100
			}

			if errorRate > 50 {
				status = "unhealthy"
				statusMessage = "High error rate detected"
			} else if errorRate > 10 {
				status = "degraded"
				statusMessage = "Elevated error rate"
			} else {
				status = "healthy"
				statusMessage = "All systems operational"
			}

			healthData := map[string]interface{}{
				"status":  status,
				"message": statusMessage,
				"details": map[string]interface{}{
					"error_rate_percent": errorRate,
					"total_requests":     stats.TotalRequests,
					"failed_requests":    stats.FailedRequests,
				},
				"server": map[string]interface{}{
					"version":    r.version,
					"splunk_url": r.config.SplunkURL,
				},
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			}

			return r.jsonResult("health://status", healthData)
		},
	}
}

// GetResourceTemplates returns resource templates for common query patterns.
// These templates help LLMs understand SPL structure before running searches.
func (r *Registry) GetResourceTemplates() []mcp.ResourceTemplate {
	return []mcp.ResourceTemplate{
		{
			URITemplate: "template://spl/{topic}",
			Name:        "SPL Query Template",
			Description: "Template showing SPL query examples. Supports topics: 'basics', 'itsi'. Use this to understand query structure before running run_splunk_search.",
			MIMEType:    "application/json",
		},
	}
}

// GetTemplateHandler returns a handler for resource templates
func (r *Registry) GetTemplateHandler() mcp.ResourceHandler {
	return func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := req.Params.URI

		var content map[string]interface{}

		switch {
		case matchTemplate(uri, "template://spl/"):
			topic := extractTemplateName(uri, "template://spl/")
			content = getSPLTemplate(topic)
		default:
			content = map[string]interface{}{
				"error": "Unknown template type",
				"available_templates": []string{
					"template://spl/{topic}",
				},
			}
		}

		return r.jsonResult(uri, content)
	}
}

func matchTemplate(uri, prefix string) bool {
	return len(uri) > len(prefix) && uri[:len(prefix)] == prefix
}

func extractTemplateName(uri, prefix string) string {
	return uri[len(prefix):]
}

// getSPLTemplate returns an SPL query syntax template
func getSPLTemplate(topic string) map[string]interface{} {
	if topic == "itsi" {
		return map[string]interface{}{
			"_template_info": map[string]interface{}{
				"description": "SPL examples for ITSI summary data",
				"topic":       "itsi",
				"usage":       "Use these examples with run_splunk_search",
			},
			"examples": []map[string]interface{}{
				{
					"name":        "Service health over time",
					"query":       "search index=itsi_summary kpi=ServiceHealthScore | timechart avg(alert_value) by serviceid",
					"description": "Plot health score per service",
				},
				{
					"name":        "KPI values for a service",
					"query":       "search index=itsi_summary serviceid=<id> | stats latest(alert_value) by kpi",
					"description": "Latest value of every KPI in a service",
				},
				{
					"name":        "Notable event counts",
					"query":       "search index=itsi_tracked_alerts earliest=-24h | stats count by severity",
					"description": "Episode activity by severity over the last day",
				},
			},
			"_related_tools": []string{
				"run_splunk_search",
				"get_service_analyzer_view",
			},
		}
	}

	// Default to basics
	return map[string]interface{}{
		"_template_info": map[string]interface{}{
			"description": "Basic SPL query syntax examples",
			"topic":       "basics",
			"usage":       "Use these examples with run_splunk_search",
		},
		"examples": []map[string]interface{}{
			{
				"name":        "Select events",
				"query":       "search index=_internal log_level=ERROR",
				"description": "Select events from an index with a field filter",
			},
			{
				"name":        "Aggregate",
				"query":       "search index=_internal | stats count by sourcetype",
				"description": "Count events per sourcetype",
			},
			{
				"name":        "Bound output",
				"query":       "search index=main | head 10",
				"description": "Return only the first 10 events",
			},
			{
				"name":        "Time scoping",
				"query":       "search index=main earliest=-1h latest=now",
				"description": "Restrict the search to the last hour",
			},
			{
				"name":        "Shape columns",
				"query":       "search index=main | table _time, host, source",
				"description": "Project specific fields",
			},
		},
		"operators": []string{
			"search", "stats", "timechart", "table", "head", "tail", "where", "eval", "rex",
		},
		"_related_tools": []string{
			"run_splunk_search",
			"get_splunk_indexes",
		},
	}
}
