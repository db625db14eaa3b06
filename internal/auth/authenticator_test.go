package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewSelectsTokenMode(t *testing.T) {
	a, err := New("admin", "changeme", "my-token", zap.NewNop())
	require.NoError(t, err)

	// Token wins even when basic credentials are also present
	assert.Equal(t, ModeToken, a.Mode())
}

func TestNewSelectsBasicMode(t *testing.T) {
	a, err := New("admin", "changeme", "", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ModeBasic, a.Mode())
}

func TestNewRequiresCredentials(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "no credentials at all"},
		{name: "username only", username: "admin"},
		{name: "password only", password: "changeme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.username, tt.password, "", zap.NewNop())
			assert.Error(t, err)
		})
	}
}

func TestAuthenticateToken(t *testing.T) {
	a, err := New("", "", "my-token", zap.NewNop())
	require.NoError(t, err)

	req, err := http.NewRequest("GET", "https://splunk.example.com:8089/services/server/info", nil)
	require.NoError(t, err)

	require.NoError(t, a.Authenticate(req))
	assert.Equal(t, "Bearer my-token", req.Header.Get("Authorization"))
}

func TestAuthenticateBasic(t *testing.T) {
	a, err := New("admin", "changeme", "", zap.NewNop())
	require.NoError(t, err)

	req, err := http.NewRequest("GET", "https://splunk.example.com:8089/services/server/info", nil)
	require.NoError(t, err)

	require.NoError(t, a.Authenticate(req))

	username, password, ok := req.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "admin", username)
	assert.Equal(t, "changeme", password)
}

func TestAuthenticateNilRequest(t *testing.T) {
	a, err := New("", "", "my-token", zap.NewNop())
	require.NoError(t, err)

	assert.Error(t, a.Authenticate(nil))
}

func TestValidate(t *testing.T) {
	a, err := New("admin", "changeme", "", zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, a.Validate())

	a, err = New("", "", "my-token", zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, a.Validate())
}
