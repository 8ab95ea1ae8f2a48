package workflows

import (
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/crs-platform/orchestrator/internal/activities"
	"github.com/crs-platform/orchestrator/internal/agents"
	"github.com/crs-platform/orchestrator/internal/constants"
	"github.com/crs-platform/orchestrator/internal/formatting"
)

// EndOfReasoningMarker separates reasoning output from the final result in
// the trace. Callers split on the first occurrence and discard the marker
// from both halves.
const EndOfReasoningMarker = "-THINKING ENDS-"

const (
	deprecationNotice = "[Note: General queries not related will not be answered from next version...] \n"

	notImplementedPlaceholder = "[Workflows yet to be implemented. Please try other queries...]"
)

// PipelineWorkflow sequences one query through classification, optional
// search and summarization, and result formatting. Sub-agent failures are
// not retried and fail the workflow.
func PipelineWorkflow(ctx workflow.Context, input TaskInput) (TaskResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Pipeline started",
		"session_id", input.SessionID,
		"query_length", len(input.Query))

	// Model-backed activities get one attempt; a malformed model response
	// will not improve on a blind replay.
	agentOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 60 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	}
	ctx = workflow.WithActivityOptions(ctx, agentOpts)

	var trace strings.Builder

	conversationContext := FormatHistoryContext(input.History, DefaultMaxTurns)

	var classification agents.ClassificationResult
	err := workflow.ExecuteActivity(ctx, constants.ClassifyIntentActivity, activities.ClassifyInput{
		Query:               input.Query,
		ConversationContext: conversationContext,
	}).Get(ctx, &classification)
	if err != nil {
		return failed(trace.String(), err), err
	}

	trace.WriteString("\nintent: " + string(classification.Intent) + "\n")
	trace.WriteString("explanation: " + explanationText(classification.Explanation) + "\n")

	var results []string

	switch classification.Intent {
	case agents.IntentKnowledgeSupport:
		var keywords agents.KeywordResult
		err = workflow.ExecuteActivity(ctx, constants.ExtractKeywordsActivity, activities.KeywordInput{
			Query: input.Query,
		}).Get(ctx, &keywords)
		if err != nil {
			return failed(trace.String(), err), err
		}
		trace.WriteString("\nagent identified search phrase:\n " + keywords.SearchQuery + "\n")

		// The search session carries its own tighter bound; the activity
		// enforces the per-session timeout internally as well.
		searchCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
			StartToCloseTimeout: 45 * time.Second,
			RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
		})
		var raw activities.WebSearchResult
		err = workflow.ExecuteActivity(searchCtx, constants.ExecuteWebSearchActivity, activities.WebSearchInput{
			SearchQuery: keywords.SearchQuery,
		}).Get(searchCtx, &raw)
		if err != nil {
			return failed(trace.String(), err), err
		}

		var summary agents.SearchSummary
		err = workflow.ExecuteActivity(ctx, constants.SummarizeResultsActivity, activities.SummarizeInput{
			RawResult: raw.Raw,
		}).Get(ctx, &summary)
		if err != nil {
			return failed(trace.String(), err), err
		}

		trace.WriteString(EndOfReasoningMarker + "\n")
		results = []string{formatting.FormatSummary(summary)}

	case agents.IntentGeneral:
		results = []string{deprecationNotice + explanationText(classification.Explanation)}

	default:
		// clarification and harmful carry their response in the
		// explanation; the remaining intents have no workflow yet.
		if classification.Explanation != nil {
			results = []string{*classification.Explanation}
		} else {
			results = []string{notImplementedPlaceholder}
		}
	}

	logger.Info("Pipeline completed", "intent", classification.Intent)
	return TaskResult{
		Trace:   trace.String(),
		Results: results,
		Success: true,
	}, nil
}

func explanationText(explanation *string) string {
	if explanation == nil {
		return "null"
	}
	return *explanation
}

func failed(trace string, err error) TaskResult {
	return TaskResult{
		Trace:        trace,
		Success:      false,
		ErrorMessage: err.Error(),
	}
}
