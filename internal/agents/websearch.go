package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/crs-platform/orchestrator/internal/llm"
	"github.com/crs-platform/orchestrator/internal/search"
)

// WebSearchAgent grounds a search phrase against the public web. The model
// is offered exactly one tool, with parallel tool calls disabled; the first
// tool invocation's raw output becomes the agent's final output unchanged.
// If the model answers in text instead (the no-reliable-results path), that
// text passes through as-is.
type WebSearchAgent struct {
	llm    *llm.Client
	search *search.Client
	logger *zap.Logger
}

// NewWebSearchAgent binds the agent to a completion backend and the search
// client.
func NewWebSearchAgent(client *llm.Client, searchClient *search.Client, logger *zap.Logger) *WebSearchAgent {
	return &WebSearchAgent{llm: client, search: searchClient, logger: logger}
}

var braveSearchTool = llm.ToolSpec{
	Name:        "brave_web_search",
	Description: "Search the public web. Returns up to 5 results with title, snippet and canonical URL.",
	Parameters: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "The web search phrase.",
			},
		},
		"required": []string{"query"},
	},
}

// Search runs one model round and at most one web search. The returned
// string is raw, unprocessed result text for the summarizer, or the
// no-reliable-results sentinel.
func (a *WebSearchAgent) Search(ctx context.Context, searchQuery string) (string, error) {
	turn, err := a.llm.CompleteWithTool(ctx, webSearchInstructions, WrapSearchQuery(searchQuery), braveSearchTool,
		llm.WithTemperature(0.1),
		llm.WithMaxTokens(512),
	)
	if err != nil {
		return "", err
	}

	if turn.ToolCall == nil {
		// Text answer: the sentinel (or whatever the model said) propagates
		// visibly instead of being dressed up as search data.
		if turn.Text == "" {
			return NoReliableResultsSentinel, nil
		}
		return turn.Text, nil
	}

	query := searchQuery
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(turn.ToolCall.Arguments, &args); err == nil && strings.TrimSpace(args.Query) != "" {
		query = strings.TrimSpace(args.Query)
	}

	results, err := a.search.Search(ctx, query)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return NoReliableResultsSentinel, nil
	}

	a.logger.Debug("Web search agent returning raw results",
		zap.String("query", query),
		zap.Int("results", len(results)),
	)
	return formatRawResults(results), nil
}

// formatRawResults renders search hits as plain numbered text. No ranking or
// filtering happens here; the summarizer owns interpretation.
func formatRawResults(results []search.Result) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "   URL: %s\n", r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   Snippet: %s\n", r.Snippet)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
