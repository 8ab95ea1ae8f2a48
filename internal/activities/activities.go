package activities

import (
	"context"
	"errors"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/crs-platform/orchestrator/internal/agents"
	"github.com/crs-platform/orchestrator/internal/constants"
	"github.com/crs-platform/orchestrator/internal/llm"
	"github.com/crs-platform/orchestrator/internal/metrics"
	"github.com/crs-platform/orchestrator/internal/search"
	"github.com/crs-platform/orchestrator/internal/util"
)

// Activities bundles the pipeline agents behind Temporal activity methods.
// One instance is shared across all workflow executions on a worker.
type Activities struct {
	classifier *agents.IntentClassifier
	keywords   *agents.KeywordExtractor
	webSearch  *agents.WebSearchAgent
	summarizer *agents.Summarizer

	// searchTimeout bounds a single web search session, covering both the
	// tool-selection model round and the search backend call.
	searchTimeout time.Duration

	logger *zap.Logger
}

func New(
	classifier *agents.IntentClassifier,
	keywords *agents.KeywordExtractor,
	webSearch *agents.WebSearchAgent,
	summarizer *agents.Summarizer,
	searchTimeout time.Duration,
	logger *zap.Logger,
) *Activities {
	if searchTimeout <= 0 {
		searchTimeout = 30 * time.Second
	}
	return &Activities{
		classifier:    classifier,
		keywords:      keywords,
		webSearch:     webSearch,
		summarizer:    summarizer,
		searchTimeout: searchTimeout,
		logger:        logger,
	}
}

// Register wires all activity methods onto the worker under their
// canonical names.
func (a *Activities) Register(w worker.Worker) {
	w.RegisterActivityWithOptions(a.ClassifyIntent,
		activity.RegisterOptions{Name: constants.ClassifyIntentActivity})
	w.RegisterActivityWithOptions(a.ExtractKeywords,
		activity.RegisterOptions{Name: constants.ExtractKeywordsActivity})
	w.RegisterActivityWithOptions(a.ExecuteWebSearch,
		activity.RegisterOptions{Name: constants.ExecuteWebSearchActivity})
	w.RegisterActivityWithOptions(a.SummarizeResults,
		activity.RegisterOptions{Name: constants.SummarizeResultsActivity})
}

// ClassifyIntent routes a query to one of the known intents.
func (a *Activities) ClassifyIntent(ctx context.Context, in ClassifyInput) (agents.ClassificationResult, error) {
	logger := activity.GetLogger(ctx)
	start := time.Now()

	result, err := a.classifier.Classify(ctx, in.Query, in.ConversationContext)
	observeAgent("router", start, err)
	if err != nil {
		logger.Error("Intent classification failed", "error", err)
		return agents.ClassificationResult{}, err
	}

	metrics.QueriesRouted.WithLabelValues(string(result.Intent)).Inc()
	logger.Info("Query classified",
		"intent", result.Intent,
		"query", util.Truncate(in.Query, 120))
	return result, nil
}

// ExtractKeywords turns a knowledge query into a short search phrase.
func (a *Activities) ExtractKeywords(ctx context.Context, in KeywordInput) (agents.KeywordResult, error) {
	logger := activity.GetLogger(ctx)
	start := time.Now()

	result, err := a.keywords.Extract(ctx, in.Query)
	observeAgent("keywords", start, err)
	if err != nil {
		logger.Error("Keyword extraction failed", "error", err)
		return agents.KeywordResult{}, err
	}

	logger.Info("Search phrase extracted", "search_query", result.SearchQuery)
	return result, nil
}

// ExecuteWebSearch runs the tool-calling search agent. The whole session is
// bounded by the configured search timeout.
func (a *Activities) ExecuteWebSearch(ctx context.Context, in WebSearchInput) (WebSearchResult, error) {
	logger := activity.GetLogger(ctx)
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, a.searchTimeout)
	defer cancel()

	raw, err := a.webSearch.Search(ctx, in.SearchQuery)
	observeAgent("web_search", start, err)
	switch {
	case err == nil:
		metrics.WebSearches.WithLabelValues("ok").Inc()
	case errors.Is(err, search.ErrUnavailable):
		metrics.WebSearches.WithLabelValues("unavailable").Inc()
	default:
		metrics.WebSearches.WithLabelValues("error").Inc()
	}
	if err != nil {
		logger.Error("Web search failed", "error", err)
		return WebSearchResult{}, err
	}

	logger.Info("Web search completed", "raw_preview", util.Truncate(raw, 200))
	return WebSearchResult{Raw: raw}, nil
}

// SummarizeResults condenses raw search output into a summary with
// deduplicated references.
func (a *Activities) SummarizeResults(ctx context.Context, in SummarizeInput) (agents.SearchSummary, error) {
	logger := activity.GetLogger(ctx)
	start := time.Now()

	result, err := a.summarizer.Summarize(ctx, in.RawResult)
	observeAgent("summarizer", start, err)
	if err != nil {
		logger.Error("Summarization failed", "error", err)
		return agents.SearchSummary{}, err
	}

	logger.Info("Results summarized", "references", len(result.References))
	return result, nil
}

func observeAgent(agent string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		if llm.IsSchemaViolation(err) {
			status = "schema_violation"
		}
	}
	metrics.AgentInvocations.WithLabelValues(agent, status).Inc()
	metrics.AgentDuration.WithLabelValues(agent).Observe(float64(time.Since(start).Milliseconds()))
}
