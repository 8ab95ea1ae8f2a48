package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/crs-platform/orchestrator/internal/metrics"
	"github.com/crs-platform/orchestrator/internal/session"
	"github.com/crs-platform/orchestrator/internal/workflows"
)

// failureResponse is shown to the user when the pipeline fails. The real
// error stays in the logs.
const failureResponse = "Something went wrong while processing your query. Please try again."

// workflowRunner is the slice of the Temporal client the handler needs.
type workflowRunner interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// QueryHandler accepts user queries, runs the pipeline workflow, and keeps
// session history current.
type QueryHandler struct {
	temporal  workflowRunner
	sessions  *session.Manager
	taskQueue string
	logger    *zap.Logger
}

func NewQueryHandler(temporal workflowRunner, sessions *session.Manager, taskQueue string, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		temporal:  temporal,
		sessions:  sessions,
		taskQueue: taskQueue,
		logger:    logger,
	}
}

// RegisterRoutes registers query routes on the provided mux. Probe routes
// live in the health package.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/query", h.handleQuery)
}

type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

type queryResponse struct {
	SessionID string `json:"session_id"`
	Thinking  string `json:"thinking"`
	Response  string `json:"response"`
	Success   bool   `json:"success"`
}

func (h *QueryHandler) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var req queryRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, `{"error":"query is required"}`, http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	sess, err := h.sessions.GetOrCreate(ctx, req.SessionID)
	if err != nil {
		h.logger.Error("Session lookup failed", zap.Error(err))
		http.Error(w, `{"error":"session unavailable"}`, http.StatusServiceUnavailable)
		return
	}

	// The user turn joins the history before the workflow starts; the
	// classifier sees it both in context and as the final message.
	if err := h.sessions.AddTurn(ctx, sess.ID, "user", req.Query); err != nil {
		h.logger.Error("Failed to record user turn", zap.Error(err))
		http.Error(w, `{"error":"session unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	history, err := h.sessions.History(ctx, sess.ID)
	if err != nil {
		h.logger.Error("Failed to load history", zap.Error(err))
		http.Error(w, `{"error":"session unavailable"}`, http.StatusServiceUnavailable)
		return
	}

	result, err := h.runPipeline(ctx, sess.ID, req.Query, history)
	if err != nil || !result.Success {
		metrics.PipelinesCompleted.WithLabelValues("failed").Inc()
		h.logger.Error("Pipeline failed",
			zap.String("session_id", sess.ID),
			zap.Error(err),
			zap.String("workflow_error", result.ErrorMessage))
		writeJSON(w, http.StatusOK, queryResponse{
			SessionID: sess.ID,
			Thinking:  reasoningPart(result.Trace),
			Response:  failureResponse,
			Success:   false,
		})
		return
	}
	metrics.PipelinesCompleted.WithLabelValues("ok").Inc()

	response := ""
	if len(result.Results) > 0 {
		response = result.Results[0]
	}

	// The assistant turn stores only the displayed result, never the trace.
	if err := h.sessions.AddTurn(ctx, sess.ID, "assistant", response); err != nil {
		h.logger.Warn("Failed to record assistant turn", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, queryResponse{
		SessionID: sess.ID,
		Thinking:  reasoningPart(result.Trace),
		Response:  response,
		Success:   true,
	})
}

func (h *QueryHandler) runPipeline(ctx context.Context, sessionID, query string, history []session.Message) (workflows.TaskResult, error) {
	metrics.PipelinesStarted.Inc()

	input := workflows.TaskInput{
		Query:     query,
		SessionID: sessionID,
		History:   toWorkflowMessages(history),
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	run, err := h.temporal.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        fmt.Sprintf("pipeline-%s", uuid.New().String()),
		TaskQueue: h.taskQueue,
	}, workflows.PipelineWorkflow, input)
	if err != nil {
		return workflows.TaskResult{}, fmt.Errorf("failed to start pipeline: %w", err)
	}

	var result workflows.TaskResult
	if err := run.Get(ctx, &result); err != nil {
		return workflows.TaskResult{}, fmt.Errorf("pipeline execution failed: %w", err)
	}
	return result, nil
}

// reasoningPart returns the trace text before the first end-of-reasoning
// marker, with the marker removed. Without a marker the whole trace is
// reasoning.
func reasoningPart(trace string) string {
	before, _, _ := strings.Cut(trace, workflows.EndOfReasoningMarker)
	return strings.TrimSpace(before)
}

func toWorkflowMessages(history []session.Message) []workflows.Message {
	out := make([]workflows.Message, 0, len(history))
	for _, m := range history {
		out = append(out, workflows.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
