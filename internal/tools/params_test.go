package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStringParam(t *testing.T) {
	args := map[string]interface{}{
		"query":   "search index=main",
		"numeric": float64(42),
		"bad":     []string{"not", "a", "string"},
	}

	tests := []struct {
		name     string
		key      string
		required bool
		expected string
		wantErr  bool
	}{
		{name: "present string", key: "query", required: true, expected: "search index=main"},
		{name: "numeric coerced to string", key: "numeric", required: true, expected: "42"},
		{name: "missing optional", key: "absent", required: false, expected: ""},
		{name: "missing required", key: "absent", required: true, wantErr: true},
		{name: "wrong type", key: "bad", required: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, err := GetStringParam(args, tt.key, tt.required)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, val)
		})
	}
}

func TestGetIntParam(t *testing.T) {
	args := map[string]interface{}{
		"max_results": float64(50), // JSON numbers decode as float64
		"as_string":   "25",
		"bad":         true,
	}

	tests := []struct {
		name     string
		key      string
		required bool
		expected int
		wantErr  bool
	}{
		{name: "json number", key: "max_results", required: true, expected: 50},
		{name: "numeric string", key: "as_string", required: true, expected: 25},
		{name: "missing optional defaults to zero", key: "absent", required: false, expected: 0},
		{name: "missing required", key: "absent", required: true, wantErr: true},
		{name: "wrong type", key: "bad", required: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, err := GetIntParam(args, tt.key, tt.required)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, val)
		})
	}
}

func TestGetBoolParam(t *testing.T) {
	args := map[string]interface{}{
		"flag":      true,
		"as_string": "true",
		"bad":       42,
	}

	val, err := GetBoolParam(args, "flag", true)
	require.NoError(t, err)
	assert.True(t, val)

	val, err = GetBoolParam(args, "as_string", true)
	require.NoError(t, err)
	assert.True(t, val)

	val, err = GetBoolParam(args, "absent", false)
	require.NoError(t, err)
	assert.False(t, val)

	_, err = GetBoolParam(args, "absent", true)
	require.Error(t, err)

	_, err = GetBoolParam(args, "bad", true)
	require.Error(t, err)
}
