// Package auth handles authentication for Splunk management API requests.
package auth

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Mode identifies the authentication scheme in use
type Mode string

const (
	// ModeBasic authenticates every request with HTTP basic auth
	ModeBasic Mode = "basic"
	// ModeToken authenticates every request with a static bearer token
	ModeToken Mode = "token"
)

// Authenticator adds Splunk credentials to outbound HTTP requests.
// It holds an immutable copy of the credentials; there is no process-wide
// mutable credential state.
type Authenticator struct {
	mode     Mode
	username string
	password string
	token    string
	logger   *zap.Logger
}

// New creates a new authenticator. A non-empty token selects bearer-token
// authentication; otherwise username and password are required.
func New(username, password, token string, logger *zap.Logger) (*Authenticator, error) {
	if token != "" {
		logger.Info("Using Splunk bearer token authentication")
		return &Authenticator{
			mode:   ModeToken,
			token:  token,
			logger: logger,
		}, nil
	}

	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required when no token is configured")
	}

	logger.Info("Using Splunk basic authentication", zap.String("username", username))
	return &Authenticator{
		mode:     ModeBasic,
		username: username,
		password: password,
		logger:   logger,
	}, nil
}

// Mode returns the active authentication mode
func (a *Authenticator) Mode() Mode {
	return a.mode
}

// Authenticate adds authentication to an HTTP request
func (a *Authenticator) Authenticate(req *http.Request) error {
	if req == nil {
		return fmt.Errorf("request cannot be nil")
	}

	switch a.mode {
	case ModeToken:
		req.Header.Set("Authorization", "Bearer "+a.token)
	case ModeBasic:
		req.SetBasicAuth(a.username, a.password)
	default:
		return fmt.Errorf("unsupported authentication mode: %s", a.mode)
	}

	return nil
}

// Validate checks that credentials are present and self-consistent.
// Reachability is verified separately by the health checker.
func (a *Authenticator) Validate() error {
	switch a.mode {
	case ModeToken:
		if a.token == "" {
			return fmt.Errorf("bearer token is empty")
		}
	case ModeBasic:
		if a.username == "" || a.password == "" {
			return fmt.Errorf("username or password is empty")
		}
	}
	return nil
}
