package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap/zaptest"

	"github.com/crs-platform/orchestrator/internal/session"
	"github.com/crs-platform/orchestrator/internal/workflows"
)

type fakeRun struct {
	result workflows.TaskResult
	err    error
}

func (f *fakeRun) GetID() string    { return "pipeline-test" }
func (f *fakeRun) GetRunID() string { return "run-test" }

func (f *fakeRun) Get(ctx context.Context, valuePtr interface{}) error {
	if f.err != nil {
		return f.err
	}
	*(valuePtr.(*workflows.TaskResult)) = f.result
	return nil
}

func (f *fakeRun) GetWithOptions(ctx context.Context, valuePtr interface{}, options client.WorkflowRunGetOptions) error {
	return f.Get(ctx, valuePtr)
}

type fakeRunner struct {
	run       *fakeRun
	startErr  error
	lastInput workflows.TaskInput
	calls     int
}

func (f *fakeRunner) ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error) {
	f.calls++
	if len(args) == 1 {
		f.lastInput = args[0].(workflows.TaskInput)
	}
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.run, nil
}

func newTestHandler(t *testing.T, runner *fakeRunner) *QueryHandler {
	t.Helper()
	mr := miniredis.RunT(t)
	sessions, err := session.NewManager(mr.Addr(), time.Hour, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })
	return NewQueryHandler(runner, sessions, "crs-pipeline", zaptest.NewLogger(t))
}

func postQuery(t *testing.T, h *QueryHandler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestQuerySplitsThinkingFromResponse(t *testing.T) {
	runner := &fakeRunner{run: &fakeRun{result: workflows.TaskResult{
		Trace: "\nintent: knowledge_support\nexplanation: null\n" +
			"\nagent identified search phrase:\n 5G slicing isolation\n" +
			workflows.EndOfReasoningMarker + "\n",
		Results: []string{"Slices are isolated by policy.\n\n**References:**\n1. [A](https://a.example/)"},
		Success: true,
	}}}
	h := newTestHandler(t, runner)

	rec := postQuery(t, h, queryRequest{Query: "how does slicing isolation work?"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp queryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.SessionID)
	assert.Contains(t, resp.Thinking, "intent: knowledge_support")
	assert.NotContains(t, resp.Thinking, workflows.EndOfReasoningMarker)
	assert.Contains(t, resp.Response, "**References:**")
}

func TestQueryPassesHistoryIncludingCurrentTurn(t *testing.T) {
	runner := &fakeRunner{run: &fakeRun{result: workflows.TaskResult{
		Results: []string{"hello"},
		Success: true,
	}}}
	h := newTestHandler(t, runner)

	first := postQuery(t, h, queryRequest{Query: "hi there"})
	var firstResp queryResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstResp))

	postQuery(t, h, queryRequest{Query: "and what is RSRP?", SessionID: firstResp.SessionID})

	require.Len(t, runner.lastInput.History, 3)
	assert.Equal(t, "user", runner.lastInput.History[0].Role)
	assert.Equal(t, "hi there", runner.lastInput.History[0].Content)
	assert.Equal(t, "assistant", runner.lastInput.History[1].Role)
	assert.Equal(t, "hello", runner.lastInput.History[1].Content)
	assert.Equal(t, "and what is RSRP?", runner.lastInput.History[2].Content)
}

func TestQueryStoresResultNotTrace(t *testing.T) {
	runner := &fakeRunner{run: &fakeRun{result: workflows.TaskResult{
		Trace:   "\nintent: general\nexplanation: Hello!\n",
		Results: []string{"Hello!"},
		Success: true,
	}}}
	h := newTestHandler(t, runner)

	rec := postQuery(t, h, queryRequest{Query: "hi"})
	var resp queryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	history, err := h.sessions.History(context.Background(), resp.SessionID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "assistant", history[1].Role)
	assert.Equal(t, "Hello!", history[1].Content)
	assert.NotContains(t, history[1].Content, "intent:")
}

func TestQueryPipelineFailureYieldsGenericMessage(t *testing.T) {
	runner := &fakeRunner{run: &fakeRun{err: errors.New("schema violation")}}
	h := newTestHandler(t, runner)

	rec := postQuery(t, h, queryRequest{Query: "anything"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp queryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, failureResponse, resp.Response)
	assert.NotContains(t, resp.Response, "schema violation")
}

func TestQueryRejectsEmptyQuery(t *testing.T) {
	h := newTestHandler(t, &fakeRunner{})

	rec := postQuery(t, h, queryRequest{Query: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryRejectsWrongMethod(t *testing.T) {
	h := newTestHandler(t, &fakeRunner{})
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/query", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
