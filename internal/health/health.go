package health

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/itsiops/splunk-itsi-mcp-server/internal/auth"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/client"
)

// serverInfoPath is a cheap authenticated endpoint used as the connectivity probe
const serverInfoPath = "/services/server/info"

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check represents a health check result
type Check struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// Checker performs health checks against the Splunk deployment
type Checker struct {
	client        *client.Client
	authenticator *auth.Authenticator
	logger        *zap.Logger
}

// New creates a new health checker
func New(client *client.Client, authenticator *auth.Authenticator, logger *zap.Logger) *Checker {
	return &Checker{
		client:        client,
		authenticator: authenticator,
		logger:        logger,
	}
}

// CheckAll performs all health checks
func (c *Checker) CheckAll(ctx context.Context) (Status, []Check) {
	checks := []Check{
		c.checkCredentials(),
		c.checkAPIConnectivity(ctx),
	}

	overallStatus := StatusHealthy
	for _, check := range checks {
		if check.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
			break
		} else if check.Status == StatusDegraded && overallStatus == StatusHealthy {
			overallStatus = StatusDegraded
		}
	}

	return overallStatus, checks
}

// checkCredentials verifies credentials are present and well-formed
func (c *Checker) checkCredentials() Check {
	start := time.Now()
	check := Check{
		Name:      "credentials",
		Timestamp: start,
	}

	err := c.authenticator.Validate()
	check.Duration = time.Since(start)

	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = fmt.Sprintf("Credentials invalid: %v", err)
		c.logger.Error("Health check failed: credentials",
			zap.Error(err),
			zap.Duration("duration", check.Duration),
		)
	} else {
		check.Status = StatusHealthy
		check.Message = "Credentials configured"
		c.logger.Debug("Health check passed: credentials",
			zap.Duration("duration", check.Duration),
		)
	}

	return check
}

// checkAPIConnectivity verifies the management port answers an authenticated request
func (c *Checker) checkAPIConnectivity(ctx context.Context) Check {
	start := time.Now()
	check := Check{
		Name:      "api_connectivity",
		Timestamp: start,
	}

	req := &client.Request{
		Method: "GET",
		Path:   serverInfoPath,
	}

	// Use a short timeout for health checks
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.client.Do(checkCtx, req)
	check.Duration = time.Since(start)

	if err != nil {
		if check.Duration > 3*time.Second {
			check.Status = StatusDegraded
			check.Message = "Splunk responding slowly"
		} else {
			check.Status = StatusUnhealthy
			check.Message = fmt.Sprintf("Splunk unreachable: %v", err)
		}
		c.logger.Warn("Health check failed: API connectivity",
			zap.Error(err),
			zap.Duration("duration", check.Duration),
		)
	} else {
		check.Status = StatusHealthy
		check.Message = "Splunk reachable"
		c.logger.Debug("Health check passed: API connectivity",
			zap.Duration("duration", check.Duration),
		)
	}

	return check
}
