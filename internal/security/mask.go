// Package security provides masking utilities for safe logging.
package security

import (
	"regexp"
	"strings"
)

// MaskToken masks a bearer token, showing only the first 4 and last 4 characters
func MaskToken(token string) string {
	if len(token) <= 10 {
		return "***REDACTED***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// MaskSensitiveHeaders masks sensitive values in HTTP headers
func MaskSensitiveHeaders(headers map[string][]string) map[string]string {
	masked := make(map[string]string)
	sensitiveHeaders := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"set-cookie":    true,
		"x-auth-token":  true,
		"x-request-id":  false,
		"x-trace-id":    false,
	}

	for key, values := range headers {
		keyLower := strings.ToLower(key)
		if sensitiveHeaders[keyLower] {
			masked[key] = "***REDACTED***"
		} else if len(values) > 0 {
			masked[key] = values[0]
			if len(values) > 1 {
				masked[key] += "..."
			}
		}
	}

	return masked
}

var sensitivePatterns = []*regexp.Regexp{
	// Passwords in URLs, SPL or config fragments
	regexp.MustCompile(`(?i)(password|passwd|pwd)[=:]["']?([^"'\s&]+)["']?`),
	// Bearer tokens
	regexp.MustCompile(`(?i)(bearer\s+)([a-zA-Z0-9_.-]{20,})`),
	// Secrets and tokens
	regexp.MustCompile(`(?i)(secret|token)[=:]["']?([a-zA-Z0-9_-]{16,})["']?`),
}

// MaskSensitiveData masks credentials embedded in a string
func MaskSensitiveData(data string) string {
	result := data

	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllStringFunc(result, func(match string) string {
			parts := pattern.FindStringSubmatch(match)
			if len(parts) >= 3 {
				return parts[1] + "***REDACTED***"
			}
			return "***REDACTED***"
		})
	}

	return result
}

// MaskURL masks sensitive query parameters in URLs
func MaskURL(rawURL string) string {
	sensitiveParams := []string{
		"password", "passwd", "pwd",
		"token", "access_token", "auth_token",
		"secret", "key",
	}

	result := rawURL
	for _, param := range sensitiveParams {
		pattern := regexp.MustCompile(`(?i)(` + regexp.QuoteMeta(param) + `=)([^&\s]+)`)
		result = pattern.ReplaceAllString(result, "${1}***REDACTED***")
	}

	return result
}

// SanitizeError removes sensitive data from error messages
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return MaskSensitiveData(err.Error())
}
