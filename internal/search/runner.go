// Package search encapsulates Splunk's two-phase search protocol: submit a
// job, poll until it reaches a terminal state, then fetch results.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/itsiops/splunk-itsi-mcp-server/internal/client"
	splunkerr "github.com/itsiops/splunk-itsi-mcp-server/internal/errors"
	"github.com/itsiops/splunk-itsi-mcp-server/internal/tracing"
)

// Splunk search job endpoints
const (
	jobsPath = "/services/search/jobs"
)

// State is a search job's lifecycle state
type State string

const (
	StateQueued  State = "Queued"
	StateRunning State = "Running"
	StateDone    State = "Done"
	StateFailed  State = "Failed"
)

// Row is a single search result: field name to value, schema varies per query
type Row map[string]interface{}

// Job tracks a submitted search job. The runner owns it exclusively for its
// lifetime; nothing else mutates it.
type Job struct {
	SID   string
	State State
	Query string
}

// Options control a single search run
type Options struct {
	// MaxWait bounds the poll loop; exceeding it yields a search timeout error
	MaxWait time.Duration
	// PollInterval is the fixed delay between status checks
	PollInterval time.Duration
	// MaxResults caps the rows read from the results response
	MaxResults int
}

// Runner drives the search job lifecycle against a Splunk instance
type Runner struct {
	client *client.Client
	logger *zap.Logger
}

// NewRunner creates a new search job runner
func NewRunner(c *client.Client, logger *zap.Logger) *Runner {
	return &Runner{
		client: c,
		logger: logger,
	}
}

// Run submits an SPL query, polls the job until it completes or fails, and
// returns its result rows. This is a blocking call: the caller is suspended
// for the duration of the poll loop.
func (r *Runner) Run(ctx context.Context, spl string, opts Options) ([]Row, error) {
	if strings.TrimSpace(spl) == "" {
		return nil, splunkerr.NewInvalidInput("search query must not be empty")
	}

	job, err := r.Submit(ctx, NormalizeQuery(spl))
	if err != nil {
		return nil, err
	}

	ctx, span := tracing.SearchSpan(ctx, job.SID)
	defer span.End()

	if err := r.wait(ctx, job, opts); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	rows, err := r.Results(ctx, job.SID, opts.MaxResults)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	tracing.SetToolResult(span, "rows", len(rows))
	return rows, nil
}

// NormalizeQuery ensures the query is a runnable SPL search. Splunk requires
// the leading "search" command unless the query starts with a pipe.
func NormalizeQuery(spl string) string {
	trimmed := strings.TrimSpace(spl)
	if strings.HasPrefix(trimmed, "search") || strings.HasPrefix(trimmed, "|") {
		return trimmed
	}
	return "search " + trimmed
}

// Submit creates a search job and returns it in the Queued state.
// A rejected query (HTTP 400) yields a search submission error carrying
// Splunk's reported detail.
func (r *Runner) Submit(ctx context.Context, spl string) (*Job, error) {
	form := url.Values{}
	form.Set("search", spl)
	form.Set("exec_mode", "normal")

	resp, err := r.client.Do(ctx, &client.Request{
		Method: "POST",
		Path:   jobsPath,
		Form:   form,
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == 400 {
		return nil, splunkerr.NewSearchSubmissionFailed(extractMessages(resp.Body))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, splunkerr.FromHTTPStatus(resp.StatusCode, string(resp.Body))
	}

	var body struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, splunkerr.NewParseError(err)
	}
	if body.SID == "" {
		return nil, splunkerr.NewParseError(fmt.Errorf("job creation response contained no sid"))
	}

	r.logger.Debug("Search job submitted",
		zap.String("sid", body.SID),
		zap.String("query", spl),
	)

	return &Job{SID: body.SID, State: StateQueued, Query: spl}, nil
}

// wait polls the job at a fixed interval until it is Done, Failed, or the
// wait budget is exhausted. The loop is an explicit state machine
// (Queued -> Running -> Done|Failed), never open-ended.
func (r *Runner) wait(ctx context.Context, job *Job, opts Options) error {
	deadline := time.NewTimer(opts.MaxWait)
	defer deadline.Stop()

	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return splunkerr.NewConnectionError(ctx.Err())
		case <-deadline.C:
			r.logger.Warn("Search job timed out",
				zap.String("sid", job.SID),
				zap.Duration("max_wait", opts.MaxWait),
			)
			return splunkerr.NewSearchTimeout(job.SID, opts.MaxWait.String())
		case <-ticker.C:
			state, detail, err := r.Status(ctx, job.SID)
			if err != nil {
				return err
			}
			job.State = state

			switch state {
			case StateDone:
				return nil
			case StateFailed:
				return splunkerr.NewSearchExecutionFailed(job.SID, detail)
			default:
				// Queued or Running: keep polling
				r.logger.Debug("Search job in progress",
					zap.String("sid", job.SID),
					zap.String("state", string(state)),
				)
			}
		}
	}
}

// Status fetches the job's current state and, for failures, Splunk's
// reported error detail.
func (r *Runner) Status(ctx context.Context, sid string) (State, string, error) {
	result, err := r.client.DoJSON(ctx, &client.Request{
		Method: "GET",
		Path:   jobsPath + "/" + url.PathEscape(sid),
	})
	if err != nil {
		return "", "", err
	}

	content := entryContent(result)
	if content == nil {
		return "", "", splunkerr.NewParseError(fmt.Errorf("job status response contained no entry content"))
	}

	detail := messagesFromContent(content)

	if failed, _ := content["isFailed"].(bool); failed {
		return StateFailed, detail, nil
	}
	if done, _ := content["isDone"].(bool); done {
		return StateDone, detail, nil
	}

	dispatchState, _ := content["dispatchState"].(string)
	switch strings.ToUpper(dispatchState) {
	case "QUEUED":
		return StateQueued, detail, nil
	case "DONE":
		return StateDone, detail, nil
	case "FAILED":
		return StateFailed, detail, nil
	default:
		// PARSING, RUNNING, FINALIZING and anything unknown count as in-flight
		return StateRunning, detail, nil
	}
}

// Results fetches the finished job's result rows, capped at maxResults.
// Rows come back in the order Splunk returns them.
func (r *Runner) Results(ctx context.Context, sid string, maxResults int) ([]Row, error) {
	result, err := r.client.DoJSON(ctx, &client.Request{
		Method: "GET",
		Path:   jobsPath + "/" + url.PathEscape(sid) + "/results",
		Query: map[string]string{
			"count": strconv.Itoa(maxResults),
		},
	})
	if err != nil {
		return nil, err
	}

	rawRows, _ := result["results"].([]interface{})
	rows := make([]Row, 0, len(rawRows))
	for _, raw := range rawRows {
		if len(rows) >= maxResults {
			break
		}
		if m, ok := raw.(map[string]interface{}); ok {
			rows = append(rows, Row(m))
		}
	}

	r.logger.Debug("Search results fetched",
		zap.String("sid", sid),
		zap.Int("rows", len(rows)),
	)

	return rows, nil
}

// entryContent digs out entry[0].content from a Splunk job status response
func entryContent(result map[string]interface{}) map[string]interface{} {
	entries, _ := result["entry"].([]interface{})
	if len(entries) == 0 {
		return nil
	}
	entry, ok := entries[0].(map[string]interface{})
	if !ok {
		return nil
	}
	content, _ := entry["content"].(map[string]interface{})
	return content
}

// messagesFromContent joins the messages Splunk attaches to a job status
func messagesFromContent(content map[string]interface{}) string {
	raw, _ := content["messages"].([]interface{})
	var parts []string
	for _, m := range raw {
		msg, ok := m.(map[string]interface{})
		if !ok {
			continue
		}
		text, _ := msg["text"].(string)
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "; ")
}

// extractMessages pulls human-readable messages out of an error response
// body, falling back to the raw body when it is not the expected JSON shape.
func extractMessages(body []byte) string {
	var parsed struct {
		Messages []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Messages) > 0 {
		var parts []string
		for _, m := range parsed.Messages {
			if m.Text != "" {
				parts = append(parts, m.Text)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}
	return strings.TrimSpace(string(body))
}
