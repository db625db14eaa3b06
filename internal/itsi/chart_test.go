package itsi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHealthChart(t *testing.T) {
	services := []ServiceHealth{
		{ServiceName: "Web Store", HealthScore: 85, Status: "healthy"},
		{ServiceName: "Payment Gateway", HealthScore: 42, Status: "critical"},
	}

	doc, err := RenderHealthChart(services)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, "chart.js")
	assert.Contains(t, doc, "healthChart")

	// Labels carry the title-cased status
	assert.Contains(t, doc, "Web Store (Healthy)")
	assert.Contains(t, doc, "Payment Gateway (Critical)")

	// Bars are colored by health band
	assert.Contains(t, doc, colorHealthy)
	assert.Contains(t, doc, colorCritical)
	assert.NotContains(t, doc, colorWarning)
}

func TestRenderHealthChartNoData(t *testing.T) {
	for _, services := range [][]ServiceHealth{nil, {}} {
		doc, err := RenderHealthChart(services)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
		assert.Contains(t, doc, "No Data")
		assert.NotContains(t, doc, "healthChart")
	}
}

func TestRenderHealthChartMissingName(t *testing.T) {
	doc, err := RenderHealthChart([]ServiceHealth{
		{ServiceName: "", HealthScore: 50, Status: "critical"},
	})
	require.NoError(t, err)
	assert.Contains(t, doc, "N/A (Critical)")
}

func TestColorForScore(t *testing.T) {
	assert.Equal(t, colorCritical, colorForScore(30))
	assert.Equal(t, colorCritical, colorForScore(60))
	assert.Equal(t, colorWarning, colorForScore(70))
	assert.Equal(t, colorWarning, colorForScore(80))
	assert.Equal(t, colorHealthy, colorForScore(95))
}
