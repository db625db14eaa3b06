// Package itsi shapes raw Splunk and ITSI JSON responses into the structures
// the MCP tools return.
package itsi

import (
	"encoding/json"
	"strconv"

	splunkerr "github.com/itsiops/splunk-itsi-mcp-server/internal/errors"
)

// ITSI REST endpoints on the Splunk management port
const (
	ServiceAnalyzerPath = "/servicesNS/nobody/SA-ITOA/itoa_interface/service_analyzer_view"
	ServicesPath        = "/servicesNS/nobody/SA-ITOA/itoa_interface/service"
)

// ServiceHealth is one shaped service health record
type ServiceHealth struct {
	ServiceName string  `json:"service_name"`
	HealthScore float64 `json:"health_score"`
	Status      string  `json:"status"`
}

// Health score thresholds, matching the chart's color bands
const (
	criticalThreshold = 60
	warningThreshold  = 80
)

// StatusForScore derives a status label from a health score. Used when the
// source record carries no status of its own.
func StatusForScore(score float64) string {
	switch {
	case score <= criticalThreshold:
		return "critical"
	case score <= warningThreshold:
		return "warning"
	default:
		return "healthy"
	}
}

// ParseServiceHealth shapes an ITSI service payload into health records,
// preserving source order. ITSI returns either a bare JSON array of service
// objects or an object wrapping one; both are accepted. Records missing
// optional fields get defaults rather than failing the whole call, but a
// payload that is not JSON at all is a parse error.
func ParseServiceHealth(body []byte) ([]ServiceHealth, error) {
	items, err := serviceItems(body)
	if err != nil {
		return nil, err
	}

	records := make([]ServiceHealth, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		records = append(records, shapeService(obj))
	}
	return records, nil
}

// serviceItems extracts the list of service objects from the payload
func serviceItems(body []byte) ([]interface{}, error) {
	var asList []interface{}
	if err := json.Unmarshal(body, &asList); err == nil {
		return asList, nil
	}

	var asObject map[string]interface{}
	if err := json.Unmarshal(body, &asObject); err != nil {
		return nil, splunkerr.NewParseError(err)
	}

	// The analyzer view wraps the list; the key varies across ITSI versions
	for _, key := range []string{"services", "entry", "results"} {
		if list, ok := asObject[key].([]interface{}); ok {
			return list, nil
		}
	}

	// An object with no recognizable list is an empty view, not an error
	return nil, nil
}

func shapeService(obj map[string]interface{}) ServiceHealth {
	record := ServiceHealth{
		ServiceName: stringField(obj, "title", "name", "service_name"),
		HealthScore: scoreField(obj, "health_score", "healthScore", "score"),
	}

	record.Status = stringField(obj, "severity", "health_status", "status")
	if record.Status == "" {
		record.Status = StatusForScore(record.HealthScore)
	}

	return record
}

// stringField returns the first present string among the candidate keys,
// or empty string when all are missing
func stringField(obj map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := obj[key].(string); ok {
			return v
		}
	}
	return ""
}

// scoreField coerces the first present score value. ITSI reports scores as
// numbers or numeric strings depending on the endpoint; missing defaults to 0.
func scoreField(obj map[string]interface{}, keys ...string) float64 {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case float64:
			return v
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f
			}
		}
	}
	return 0
}
