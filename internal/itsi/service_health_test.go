package itsi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	splunkerr "github.com/itsiops/splunk-itsi-mcp-server/internal/errors"
)

func TestParseServiceHealthBareArray(t *testing.T) {
	body := []byte(`[
		{"title": "Web Store", "health_score": 85, "severity": "normal"},
		{"title": "Payment Gateway", "health_score": 42, "severity": "critical"}
	]`)

	services, err := ParseServiceHealth(body)
	require.NoError(t, err)
	require.Len(t, services, 2)

	// Source order is preserved
	assert.Equal(t, "Web Store", services[0].ServiceName)
	assert.Equal(t, 85.0, services[0].HealthScore)
	assert.Equal(t, "normal", services[0].Status)

	assert.Equal(t, "Payment Gateway", services[1].ServiceName)
	assert.Equal(t, 42.0, services[1].HealthScore)
	assert.Equal(t, "critical", services[1].Status)
}

func TestParseServiceHealthWrappedObject(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "services key",
			body: `{"services": [{"name": "A", "health_score": 90}]}`,
		},
		{
			name: "entry key",
			body: `{"entry": [{"name": "A", "health_score": 90}]}`,
		},
		{
			name: "results key",
			body: `{"results": [{"name": "A", "health_score": 90}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			services, err := ParseServiceHealth([]byte(tt.body))
			require.NoError(t, err)
			require.Len(t, services, 1)
			assert.Equal(t, "A", services[0].ServiceName)
			assert.Equal(t, 90.0, services[0].HealthScore)
		})
	}
}

func TestParseServiceHealthEmpty(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty array", body: `[]`},
		{name: "object with no service list", body: `{"paging": {"total": 0}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			services, err := ParseServiceHealth([]byte(tt.body))
			require.NoError(t, err)
			assert.Empty(t, services)
		})
	}
}

func TestParseServiceHealthNotJSON(t *testing.T) {
	_, err := ParseServiceHealth([]byte(`<html>splunkd error</html>`))
	require.Error(t, err)
	assert.True(t, splunkerr.IsCode(err, splunkerr.CodeParseError))
}

func TestParseServiceHealthTolerantShaping(t *testing.T) {
	body := []byte(`[
		{"service_name": "Alt Name Key", "score": "73.5"},
		{"title": "No Score At All"},
		{"health_status": "warning", "healthScore": 65}
	]`)

	services, err := ParseServiceHealth(body)
	require.NoError(t, err)
	require.Len(t, services, 3)

	// Alternate name and numeric-string score keys are accepted
	assert.Equal(t, "Alt Name Key", services[0].ServiceName)
	assert.Equal(t, 73.5, services[0].HealthScore)

	// Missing score defaults to 0 and derives a critical status
	assert.Equal(t, "No Score At All", services[1].ServiceName)
	assert.Equal(t, 0.0, services[1].HealthScore)
	assert.Equal(t, "critical", services[1].Status)

	// Explicit status wins over the derived one
	assert.Equal(t, "warning", services[2].Status)
	assert.Equal(t, 65.0, services[2].HealthScore)
}

func TestStatusForScore(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{0, "critical"},
		{59.9, "critical"},
		{60, "critical"},
		{60.1, "warning"},
		{80, "warning"},
		{80.1, "healthy"},
		{100, "healthy"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, StatusForScore(tt.score), "score %v", tt.score)
	}
}
