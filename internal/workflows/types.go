package workflows

// Message is a single conversation turn as supplied by the caller.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TaskInput is the input to PipelineWorkflow. History is ordered oldest
// first; the caller owns session state and appends the current user turn
// before starting the workflow.
type TaskInput struct {
	Query     string    `json:"query"`
	SessionID string    `json:"session_id"`
	History   []Message `json:"history"`
}

// TaskResult is the workflow output. Trace carries the intermediate
// reasoning text; Results carries at most one final answer string. Callers
// display Results and must never feed Trace back into session history.
type TaskResult struct {
	Trace        string   `json:"trace"`
	Results      []string `json:"results"`
	Success      bool     `json:"success"`
	ErrorMessage string   `json:"error_message,omitempty"`
}
