// Package client provides HTTP client functionality for the Splunk management REST API.
package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/itsiops/splunk-itsi-mcp-server/internal/auth"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/config"
	splunkerr "github.com/itsiops/splunk-itsi-mcp-server/internal/errors"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/security"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/tracing"
)

// managementPort is Splunk's default REST management port
const managementPort = "8089"

// MetricsRecorder receives request outcomes for metrics collection
type MetricsRecorder interface {
	RecordRequest(success bool, latency time.Duration, statusCode int)
}

// Client is an HTTP client for the Splunk management REST API
type Client struct {
	httpClient    *http.Client
	baseURL       string
	config        *config.Config
	logger        *zap.Logger
	rateLimiter *rate.Limiter
	auth        *auth.Authenticator
	metrics     MetricsRecorder
	version     string
}

// New creates a new API client
func New(cfg *config.Config, logger *zap.Logger, version string) (*Client, error) {
	authenticator, err := auth.New(cfg.Username, cfg.Password, cfg.Token, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticator: %w", err)
	}

	baseURL, err := managementURL(cfg.SplunkURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Splunk URL: %w", err)
	}

	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	// TLS verification is off by default because Splunk management ports
	// commonly run self-signed certificates. The connection is still
	// attempted; only the certificate check is skipped, and loudly.
	if !cfg.TLSVerify {
		tlsConfig.InsecureSkipVerify = true
		logger.Warn("TLS certificate verification is DISABLED - set SPLUNK_TLS_VERIFY=true to enforce it",
			zap.String("splunk_url", baseURL),
		)
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig:     tlsConfig,
	}

	httpClient := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}

	var rateLimiter *rate.Limiter
	if cfg.EnableRateLimit {
		rateLimiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)
	}

	if version == "" {
		version = "dev"
	}

	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		config:      cfg,
		logger:      logger,
		rateLimiter: rateLimiter,
		auth:        authenticator,
		version:     version,
	}, nil
}

// SetMetrics attaches a metrics recorder; pass nil to disable recording
func (c *Client) SetMetrics(m MetricsRecorder) {
	c.metrics = m
}

// Authenticator returns the configured credential handler
func (c *Client) Authenticator() *auth.Authenticator {
	return c.auth
}

// managementURL normalizes the configured Splunk URL to the management port.
// A URL without an explicit port gets :8089 appended, matching how Splunk
// deployments expose the REST interface alongside the web UI URL.
func managementURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL %q has no host", raw)
	}
	if u.Port() == "" {
		u.Host = u.Host + ":" + managementPort
	}
	return u.String(), nil
}

// Request represents an HTTP request to the Splunk API
type Request struct {
	Method  string
	Path    string
	Query   map[string]string
	Form    url.Values // form-encoded body; Splunk POST endpoints expect this
	Headers map[string]string
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Do executes an HTTP request against the management API. It performs no
// retries; network-level failures come back as connection errors. Non-2xx
// responses are returned as-is for the caller to translate.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	ctx, span := tracing.APISpan(ctx, req.Method, req.Path)
	defer span.End()

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait failed: %w", err)
		}
	}

	// Splunk returns Atom XML unless output_mode=json is requested
	params := url.Values{}
	params.Set("output_mode", "json")
	for k, v := range req.Query {
		params.Set(k, v)
	}
	requestURL := fmt.Sprintf("%s%s?%s", c.baseURL, req.Path, params.Encode())

	var bodyReader io.Reader
	if req.Form != nil {
		bodyReader = strings.NewReader(req.Form.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if req.Form != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", fmt.Sprintf("splunk-itsi-mcp-server/%s", c.version))

	if err := c.auth.Authenticate(httpReq); err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	c.logger.Debug("Executing HTTP request",
		zap.String("method", req.Method),
		zap.String("url", security.MaskURL(requestURL)),
		zap.Any("headers", security.MaskSensitiveHeaders(httpReq.Header)),
	)

	startTime := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("HTTP request failed",
			zap.Error(err),
			zap.String("method", req.Method),
			zap.String("url", security.MaskURL(requestURL)),
			zap.Duration("duration", duration),
		)
		if c.metrics != nil {
			c.metrics.RecordRequest(false, duration, 0)
		}
		connErr := splunkerr.NewConnectionError(err)
		tracing.RecordError(span, connErr)
		return nil, connErr
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil {
			c.logger.Warn("Failed to close response body", zap.Error(closeErr))
		}
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, splunkerr.NewConnectionError(err)
	}

	c.logger.Debug("HTTP request completed",
		zap.String("method", req.Method),
		zap.String("url", security.MaskURL(requestURL)),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("duration", duration),
		zap.Int("response_size", len(body)),
	)

	tracing.SetHTTPStatus(span, httpResp.StatusCode)
	if c.metrics != nil {
		success := httpResp.StatusCode >= 200 && httpResp.StatusCode < 300
		c.metrics.RecordRequest(success, duration, httpResp.StatusCode)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Headers:    httpResp.Header,
	}, nil
}

// DoJSON executes a request and returns the parsed JSON body, translating
// failures into the typed error taxonomy: 401/403 to authentication errors,
// other non-2xx to API errors, and malformed JSON to parse errors.
func (c *Client) DoJSON(ctx context.Context, req *Request) (map[string]interface{}, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, splunkerr.FromHTTPStatus(resp.StatusCode, string(resp.Body))
	}

	var result map[string]interface{}
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &result); err != nil {
			return nil, splunkerr.NewParseError(err)
		}
	}

	return result, nil
}

// BaseURL returns the normalized management endpoint, for logging
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close closes the client and releases resources
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
