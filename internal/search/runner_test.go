package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/itsiops/splunk-itsi-mcp-server/internal/client"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/config"
	splunkerr "github.com/itsiops/splunk-itsi-mcp-server/internal/errors"
)

// stubSplunk simulates the Splunk search job REST endpoints: job creation,
// status polling, and results retrieval.
type stubSplunk struct {
	t *testing.T

	sid string
	// states are served in order on successive status polls; the last one
	// repeats once exhausted
	states []string
	// failureDetail is attached to FAILED status responses
	failureDetail string
	// rows are returned from the results endpoint
	rows []map[string]interface{}
	// submitStatus overrides the job creation response code (0 means 201)
	submitStatus int
	// submitBody overrides the job creation response body
	submitBody string

	polls       atomic.Int32
	submittedQ  atomic.Value // string: the submitted SPL
	resultCount atomic.Value // string: the count query param
}

func (s *stubSplunk) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/services/search/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		require.NoError(s.t, r.ParseForm())
		s.submittedQ.Store(r.PostForm.Get("search"))

		if s.submitStatus != 0 {
			w.WriteHeader(s.submitStatus)
			_, _ = w.Write([]byte(s.submitBody))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = fmt.Fprintf(w, `{"sid":%q}`, s.sid)
	})

	mux.HandleFunc("/services/search/jobs/"+s.sid, func(w http.ResponseWriter, _ *http.Request) {
		n := int(s.polls.Add(1)) - 1
		if n >= len(s.states) {
			n = len(s.states) - 1
		}
		state := s.states[n]

		content := map[string]interface{}{
			"dispatchState": state,
			"isDone":        state == "DONE",
			"isFailed":      state == "FAILED",
		}
		if state == "FAILED" && s.failureDetail != "" {
			content["messages"] = []map[string]interface{}{
				{"type": "FATAL", "text": s.failureDetail},
			}
		}

		body := map[string]interface{}{
			"entry": []map[string]interface{}{
				{"name": s.sid, "content": content},
			},
		}
		w.WriteHeader(http.StatusOK)
		require.NoError(s.t, json.NewEncoder(w).Encode(body))
	})

	mux.HandleFunc("/services/search/jobs/"+s.sid+"/results", func(w http.ResponseWriter, r *http.Request) {
		s.resultCount.Store(r.URL.Query().Get("count"))
		body := map[string]interface{}{"results": s.rows}
		w.WriteHeader(http.StatusOK)
		require.NoError(s.t, json.NewEncoder(w).Encode(body))
	})

	return mux
}

func newTestRunner(t *testing.T, stub *stubSplunk) (*Runner, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)

	cfg := &config.Config{
		SplunkURL:       server.URL,
		Token:           "test-token", // pragma: allowlist secret
		Timeout:         5 * time.Second,
		MaxIdleConns:    10,
		IdleConnTimeout: 30 * time.Second,
	}
	c, err := client.New(cfg, zap.NewNop(), "test")
	require.NoError(t, err)

	return NewRunner(c, zap.NewNop()), server
}

func fastOptions() Options {
	return Options{
		MaxWait:      2 * time.Second,
		PollInterval: 10 * time.Millisecond,
		MaxResults:   100,
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare query gets search prefix",
			input:    "index=_internal | head 10",
			expected: "search index=_internal | head 10",
		},
		{
			name:     "search prefix is preserved",
			input:    "search index=main",
			expected: "search index=main",
		},
		{
			name:     "generating command is preserved",
			input:    "| makeresults count=5",
			expected: "| makeresults count=5",
		},
		{
			name:     "surrounding whitespace is trimmed",
			input:    "  index=main  ",
			expected: "search index=main",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeQuery(tt.input))
		})
	}
}

func TestRunHappyPath(t *testing.T) {
	stub := &stubSplunk{
		t:      t,
		sid:    "sid-42",
		states: []string{"QUEUED", "RUNNING", "DONE"},
		rows: []map[string]interface{}{
			{"host": "web-01", "count": "17"},
			{"host": "web-02", "count": "9"},
		},
	}
	runner, _ := newTestRunner(t, stub)

	rows, err := runner.Run(context.Background(), "index=_internal | stats count by host", fastOptions())
	require.NoError(t, err)

	// Rows come back in Splunk's order
	require.Len(t, rows, 2)
	assert.Equal(t, "web-01", rows[0]["host"])
	assert.Equal(t, "web-02", rows[1]["host"])

	// The bare query was normalized before submission
	assert.Equal(t, "search index=_internal | stats count by host", stub.submittedQ.Load())

	// The job was polled through the queued and running states
	assert.GreaterOrEqual(t, stub.polls.Load(), int32(3))
}

func TestRunCapsResults(t *testing.T) {
	rows := make([]map[string]interface{}, 10)
	for i := range rows {
		rows[i] = map[string]interface{}{"n": fmt.Sprintf("%d", i)}
	}
	stub := &stubSplunk{
		t:      t,
		sid:    "sid-cap",
		states: []string{"DONE"},
		rows:   rows,
	}
	runner, _ := newTestRunner(t, stub)

	opts := fastOptions()
	opts.MaxResults = 3

	got, err := runner.Run(context.Background(), "search index=main", opts)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "0", got[0]["n"])
	assert.Equal(t, "2", got[2]["n"])

	// The cap was also passed to Splunk as the count parameter
	assert.Equal(t, "3", stub.resultCount.Load())
}

func TestRunEmptyQuery(t *testing.T) {
	stub := &stubSplunk{t: t, sid: "unused", states: []string{"DONE"}}
	runner, _ := newTestRunner(t, stub)

	_, err := runner.Run(context.Background(), "   ", fastOptions())
	require.Error(t, err)
	assert.True(t, splunkerr.IsCode(err, splunkerr.CodeInvalidInput))
}

func TestRunSubmissionRejected(t *testing.T) {
	stub := &stubSplunk{
		t:            t,
		sid:          "unused",
		states:       []string{"DONE"},
		submitStatus: http.StatusBadRequest,
		submitBody:   `{"messages":[{"type":"FATAL","text":"Unknown search command 'frobnicate'."}]}`,
	}
	runner, _ := newTestRunner(t, stub)

	_, err := runner.Run(context.Background(), "search | frobnicate", fastOptions())
	require.Error(t, err)
	assert.True(t, splunkerr.IsCode(err, splunkerr.CodeSearchSubmissionFailed))
	assert.Contains(t, err.Error(), "frobnicate")
}

func TestRunJobFails(t *testing.T) {
	stub := &stubSplunk{
		t:             t,
		sid:           "sid-fail",
		states:        []string{"RUNNING", "FAILED"},
		failureDetail: "Search has been cancelled by the search process",
	}
	runner, _ := newTestRunner(t, stub)

	_, err := runner.Run(context.Background(), "search index=main", fastOptions())
	require.Error(t, err)
	assert.True(t, splunkerr.IsCode(err, splunkerr.CodeSearchExecutionFailed))
	assert.Contains(t, err.Error(), "cancelled")

	var se *splunkerr.SplunkError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "sid-fail", se.Details["sid"])
}

func TestRunTimesOut(t *testing.T) {
	stub := &stubSplunk{
		t:      t,
		sid:    "sid-stuck",
		states: []string{"RUNNING"}, // never reaches a terminal state
	}
	runner, _ := newTestRunner(t, stub)

	opts := Options{
		MaxWait:      50 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
		MaxResults:   10,
	}

	start := time.Now()
	_, err := runner.Run(context.Background(), "search index=main", opts)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, splunkerr.IsCode(err, splunkerr.CodeSearchTimeout))

	// The timeout error carries the sid for out-of-band inspection
	var se *splunkerr.SplunkError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "sid-stuck", se.Details["sid"])

	// The poll loop respected its wait budget
	assert.Less(t, elapsed, time.Second)
}

func TestRunContextCancelled(t *testing.T) {
	stub := &stubSplunk{
		t:      t,
		sid:    "sid-ctx",
		states: []string{"RUNNING"},
	}
	runner, _ := newTestRunner(t, stub)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, err := runner.Run(ctx, "search index=main", fastOptions())
	require.Error(t, err)
	assert.True(t, splunkerr.IsCode(err, splunkerr.CodeConnectionError))
}

func TestSubmitMissingSID(t *testing.T) {
	stub := &stubSplunk{
		t:            t,
		sid:          "unused",
		states:       []string{"DONE"},
		submitStatus: http.StatusCreated,
		submitBody:   `{}`,
	}
	runner, _ := newTestRunner(t, stub)

	_, err := runner.Submit(context.Background(), "search index=main")
	require.Error(t, err)
	assert.True(t, splunkerr.IsCode(err, splunkerr.CodeParseError))
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		content  map[string]interface{}
		expected State
	}{
		{
			name:     "queued",
			content:  map[string]interface{}{"dispatchState": "QUEUED", "isDone": false, "isFailed": false},
			expected: StateQueued,
		},
		{
			name:     "parsing counts as running",
			content:  map[string]interface{}{"dispatchState": "PARSING", "isDone": false, "isFailed": false},
			expected: StateRunning,
		},
		{
			name:     "finalizing counts as running",
			content:  map[string]interface{}{"dispatchState": "FINALIZING", "isDone": false, "isFailed": false},
			expected: StateRunning,
		},
		{
			name:     "done flag wins",
			content:  map[string]interface{}{"dispatchState": "DONE", "isDone": true, "isFailed": false},
			expected: StateDone,
		},
		{
			name:     "failed flag wins over done",
			content:  map[string]interface{}{"dispatchState": "DONE", "isDone": true, "isFailed": true},
			expected: StateFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				body := map[string]interface{}{
					"entry": []map[string]interface{}{
						{"name": "sid-s", "content": tt.content},
					},
				}
				w.WriteHeader(http.StatusOK)
				require.NoError(t, json.NewEncoder(w).Encode(body))
			}))
			defer server.Close()

			cfg := &config.Config{
				SplunkURL:       server.URL,
				Token:           "test-token", // pragma: allowlist secret
				Timeout:         5 * time.Second,
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			}
			c, err := client.New(cfg, zap.NewNop(), "test")
			require.NoError(t, err)
			runner := NewRunner(c, zap.NewNop())

			state, _, err := runner.Status(context.Background(), "sid-s")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, state)
		})
	}
}

func TestExtractMessages(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "single message",
			body:     `{"messages":[{"type":"FATAL","text":"bad SPL"}]}`,
			expected: "bad SPL",
		},
		{
			name:     "multiple messages joined",
			body:     `{"messages":[{"type":"FATAL","text":"first"},{"type":"WARN","text":"second"}]}`,
			expected: "first; second",
		},
		{
			name:     "non-JSON falls back to raw body",
			body:     "plain text error",
			expected: "plain text error",
		},
		{
			name:     "empty messages falls back to raw body",
			body:     `{"messages":[]}`,
			expected: `{"messages":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractMessages([]byte(tt.body)))
		})
	}
}
