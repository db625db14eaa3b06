package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	splunkerr "github.com/itsiops/splunk-itsi-mcp-server/internal/errors"
)

func TestLogToolExecution(t *testing.T) {
	l := NewLogger(zap.NewNop(), true)
	ctx := context.Background()

	l.LogToolExecution(ctx, "run_splunk_search", "query", "", true, 120*time.Millisecond, nil)
	l.LogToolExecution(ctx, "get_splunk_indexes", "read", "", true, 30*time.Millisecond, nil)
	l.LogToolExecution(ctx, "run_splunk_search", "query", "", false, 2*time.Second,
		splunkerr.NewSearchTimeout("sid-42", "2s"))

	entries := l.GetRecentEntries(10)
	require.Len(t, entries, 3)

	// Newest first
	failed := entries[0]
	assert.Equal(t, "run_splunk_search", failed.Tool)
	assert.False(t, failed.Success)
	assert.Equal(t, "SEARCH_TIMEOUT", failed.ErrorCode)
	assert.Equal(t, "sid-42", failed.SearchID)
	assert.NotEmpty(t, failed.ErrorMsg)
	assert.False(t, failed.Timestamp.IsZero())

	assert.True(t, entries[2].Success)
	assert.Empty(t, entries[2].ErrorCode)
}

func TestGetEntriesByTool(t *testing.T) {
	l := NewLogger(zap.NewNop(), true)
	ctx := context.Background()

	l.LogToolExecution(ctx, "get_splunk_indexes", "read", "", true, time.Millisecond, nil)
	l.LogToolExecution(ctx, "run_splunk_search", "query", "", true, time.Millisecond, nil)
	l.LogToolExecution(ctx, "run_splunk_search", "query", "", false, time.Millisecond,
		splunkerr.NewInvalidInput("bad query"))

	searches := l.GetEntriesByTool("run_splunk_search", 10)
	require.Len(t, searches, 2)
	assert.False(t, searches[0].Success)
	assert.True(t, searches[1].Success)

	assert.Empty(t, l.GetEntriesByTool("visualize_service_health", 10))
}

func TestStats(t *testing.T) {
	l := NewLogger(zap.NewNop(), true)
	ctx := context.Background()

	l.LogToolExecution(ctx, "get_service_analyzer_view", "read", "", true, 10*time.Millisecond, nil)
	l.LogToolExecution(ctx, "get_service_analyzer_view", "read", "", false, 10*time.Millisecond,
		splunkerr.NewAuthenticationFailed(401, ""))

	stats := l.GetStats()
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 50.0, stats.SuccessRate)
	assert.Equal(t, 2, stats.ToolUsage["get_service_analyzer_view"])
	assert.Equal(t, 1, stats.ErrorCounts["AUTHENTICATION_FAILED"])
	assert.NotEmpty(t, stats.ToJSON())

	l.Clear()
	assert.Equal(t, 0, l.GetStats().TotalEntries)
}

func TestDisabledLoggerRecordsNothing(t *testing.T) {
	l := NewLogger(zap.NewNop(), false)

	l.LogToolExecution(context.Background(), "run_splunk_search", "query", "", true, time.Millisecond, nil)

	assert.False(t, l.IsEnabled())
	assert.Empty(t, l.GetRecentEntries(10))
}

func TestRingBufferEviction(t *testing.T) {
	l := NewLogger(zap.NewNop(), true)
	l.maxEntries = 5

	for i := 0; i < 8; i++ {
		l.LogToolExecution(context.Background(), "get_splunk_indexes", "read", "", true, time.Millisecond, nil)
	}

	assert.Len(t, l.GetRecentEntries(100), 5)
}
