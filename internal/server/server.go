// Package server provides the MCP server implementation for Splunk ITSI.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/itsiops/splunk-itsi-mcp-server/internal/audit"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/client"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/config"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/health"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/metrics"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/prompts"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/resources"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/tools"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/tracing"
)

// Server represents the MCP server
type Server struct {
	mcpServer    *mcp.Server
	apiClient    *client.Client
	config       *config.Config
	logger       *zap.Logger
	metrics      *metrics.Metrics
	audit        *audit.Logger
	version      string
	healthServer *health.Server
}

// New creates a new MCP server instance.
func New(cfg *config.Config, logger *zap.Logger, version string) (*Server, error) {
	apiClient, err := client.New(cfg, logger, version)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "Splunk ITSI MCP Server",
		Version: version,
	}, &mcp.ServerOptions{
		HasTools:     true,
		HasPrompts:   true,
		HasResources: true,
	})

	metricsTracker := metrics.New(logger)
	apiClient.SetMetrics(metricsTracker)

	s := &Server{
		mcpServer: mcpServer,
		apiClient: apiClient,
		config:    cfg,
		logger:    logger,
		metrics:   metricsTracker,
		audit:     audit.NewLogger(logger, cfg.EnableAuditLog),
		version:   version,
	}

	// Create health server if port is configured (port > 0)
	if cfg.HealthPort > 0 {
		healthChecker := health.New(apiClient, apiClient.Authenticator(), logger)
		s.healthServer = health.NewServer(healthChecker, logger, cfg.HealthPort, cfg.HealthBindAddr, cfg.MetricsEndpoint)
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	s.registerPrompts()
	s.registerResources()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() error {
	// ITSI service health tools
	s.registerTool(tools.NewGetServiceAnalyzerViewTool(s.apiClient, s.logger))
	s.registerTool(tools.NewListITSIServicesTool(s.apiClient, s.logger))
	s.registerTool(tools.NewVisualizeServiceHealthTool(s.apiClient, s.logger))

	// Search tools
	s.registerTool(tools.NewRunSplunkSearchTool(s.apiClient, s.config, s.logger))

	// Deployment tools
	s.registerTool(tools.NewGetSplunkIndexesTool(s.apiClient, s.logger))
	s.registerTool(tools.NewGetSplunkServerInfoTool(s.apiClient, s.logger))

	s.logger.Info("Registered all MCP tools")
	return nil
}

// registerTool is a helper to register a tool with metrics, tracing, and
// audit logging wired around its Execute method.
func (s *Server) registerTool(t tools.Tool) {
	toolName := t.Name()

	mcpTool := &mcp.Tool{
		Name:        toolName,
		Description: t.Description(),
		InputSchema: t.InputSchema(),
		Annotations: t.Annotations(),
	}

	handler := func(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		// Per-tool deadline on top of whatever the transport gives us
		if timeout := t.DefaultTimeout(); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		ctx, span := tracing.ToolSpan(ctx, toolName)
		defer span.End()

		var args map[string]interface{}
		if len(request.Params.Arguments) > 0 {
			if err := json.Unmarshal(request.Params.Arguments, &args); err != nil {
				s.metrics.RecordToolExecution(toolName, false, time.Since(start))
				return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
			}
		}
		tracing.AddToolAttributes(span, args)

		result, err := t.Execute(ctx, args)
		duration := time.Since(start)
		success := err == nil && (result == nil || !result.IsError)

		s.metrics.RecordToolExecution(toolName, success, duration)
		s.audit.LogToolExecution(ctx, toolName, "query", "", success, duration, err)

		if err != nil {
			tracing.RecordError(span, err)
		} else if success {
			tracing.SetSuccess(span)
		}

		return result, err
	}

	s.mcpServer.AddTool(mcpTool, handler)
	s.logger.Debug("Registered tool", zap.String("tool", mcpTool.Name))
}

// registerPrompts registers all available MCP prompts
func (s *Server) registerPrompts() {
	registry := prompts.NewRegistry(s.logger)

	for _, p := range registry.GetPrompts() {
		s.mcpServer.AddPrompt(p.Prompt, p.Handler)
		s.logger.Debug("Registered prompt", zap.String("prompt", p.Prompt.Name))
	}

	s.logger.Info("Registered all MCP prompts", zap.Int("count", len(registry.GetPrompts())))
}

// registerResources registers all available MCP resources and resource templates
func (s *Server) registerResources() {
	registry := resources.NewRegistry(s.config, s.metrics, s.audit, s.logger, s.version)

	for _, r := range registry.GetResources() {
		s.mcpServer.AddResource(r.Resource, r.Handler)
		s.logger.Debug("Registered resource", zap.String("uri", r.Resource.URI))
	}

	templateHandler := registry.GetTemplateHandler()
	for _, t := range registry.GetResourceTemplates() {
		s.mcpServer.AddResourceTemplate(&t, templateHandler)
		s.logger.Debug("Registered resource template", zap.String("uri_template", t.URITemplate))
	}

	s.logger.Info("Registered all MCP resources",
		zap.Int("static_count", len(registry.GetResources())),
		zap.Int("template_count", len(registry.GetResourceTemplates())),
	)
}

// Start starts the MCP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting MCP server",
		zap.String("splunk_url", s.apiClient.BaseURL()),
	)

	// Start health HTTP server in background if configured
	if s.healthServer != nil {
		go func() {
			if err := s.healthServer.Start(); err != nil {
				s.logger.Error("Health server error", zap.Error(err))
			}
		}()
		s.healthServer.SetReady(true)
	}

	defer func() {
		// Log final metrics on shutdown
		s.metrics.LogStats()

		if s.healthServer != nil {
			s.healthServer.SetReady(false)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.healthServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("Failed to shutdown health server", zap.Error(err))
			}
		}

		if err := s.apiClient.Close(); err != nil {
			s.logger.Error("Failed to close API client", zap.Error(err))
		}
	}()

	// Serve over stdio
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// GetMetrics returns the server's metrics tracker for external access
func (s *Server) GetMetrics() *metrics.Metrics {
	return s.metrics
}
