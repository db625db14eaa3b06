package itsi

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Bar colors per health band
const (
	colorCritical = "rgba(255, 99, 132, 0.8)"
	colorWarning  = "rgba(255, 206, 86, 0.8)"
	colorHealthy  = "rgba(75, 192, 192, 0.8)"
)

var chartTemplate = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html>
<head>
<title>ITSI Service Health</title>
<script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
<style>
body{font-family:sans-serif;display:flex;justify-content:center;align-items:center;height:100vh;margin:0;}
.chart-container{width:90%;max-width:1000px;padding:20px;background:white;border-radius:10px;box-shadow:0 4px 12px rgba(0,0,0,0.1);}
h1{text-align:center;}
</style>
</head>
<body>
<div class="chart-container">
<h1>ITSI Service Health Overview</h1>
<canvas id="healthChart"></canvas>
</div>
<script>new Chart(document.getElementById('healthChart').getContext('2d'), {{.Config}});</script>
</body>
</html>
`))

var noDataTemplate = template.Must(template.New("nodata").Parse(`<!DOCTYPE html>
<html>
<head><title>ITSI Service Health</title></head>
<body>
<h1>No Data</h1>
<p>No ITSI service health data is available.</p>
</body>
</html>
`))

type chartPage struct {
	Config template.JS
}

// RenderHealthChart produces a standalone HTML document with a horizontal
// bar chart, one bar per service, colored by health score. Zero services
// yields a valid document with a no-data placeholder instead of failing.
func RenderHealthChart(services []ServiceHealth) (string, error) {
	if len(services) == 0 {
		var buf strings.Builder
		if err := noDataTemplate.Execute(&buf, nil); err != nil {
			return "", fmt.Errorf("failed to render no-data document: %w", err)
		}
		return buf.String(), nil
	}

	titleCaser := cases.Title(language.English)

	labels := make([]string, 0, len(services))
	scores := make([]float64, 0, len(services))
	colors := make([]string, 0, len(services))
	for _, svc := range services {
		label := svc.ServiceName
		if label == "" {
			label = "N/A"
		}
		if svc.Status != "" {
			label = fmt.Sprintf("%s (%s)", label, titleCaser.String(svc.Status))
		}
		labels = append(labels, label)
		scores = append(scores, svc.HealthScore)
		colors = append(colors, colorForScore(svc.HealthScore))
	}

	config := map[string]interface{}{
		"type": "bar",
		"data": map[string]interface{}{
			"labels": labels,
			"datasets": []map[string]interface{}{
				{
					"label":           "Health Score",
					"data":            scores,
					"backgroundColor": colors,
				},
			},
		},
		"options": map[string]interface{}{
			"responsive": true,
			"indexAxis":  "y",
			"scales": map[string]interface{}{
				"x": map[string]interface{}{"beginAtZero": true, "max": 100},
			},
			"plugins": map[string]interface{}{
				"legend": map[string]interface{}{"display": false},
				"title":  map[string]interface{}{"display": true, "text": "Health Score (0-100)"},
			},
		},
	}

	configJSON, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chart config: %w", err)
	}

	var buf strings.Builder
	if err := chartTemplate.Execute(&buf, chartPage{Config: template.JS(configJSON)}); err != nil { // #nosec G203 -- config is server-built JSON
		return "", fmt.Errorf("failed to render chart document: %w", err)
	}
	return buf.String(), nil
}

func colorForScore(score float64) string {
	switch {
	case score <= criticalThreshold:
		return colorCritical
	case score <= warningThreshold:
		return colorWarning
	default:
		return colorHealthy
	}
}
