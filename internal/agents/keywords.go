package agents

import (
	"context"
	"strings"

	"github.com/crs-platform/orchestrator/internal/llm"
)

// KeywordExtractor turns a knowledge_support query into one concise web
// search phrase. It never answers the question itself.
type KeywordExtractor struct {
	llm *llm.Client
}

// NewKeywordExtractor binds the extractor to a completion backend.
func NewKeywordExtractor(client *llm.Client) *KeywordExtractor {
	return &KeywordExtractor{llm: client}
}

// Extract produces the search phrase plus a short rationale.
func (e *KeywordExtractor) Extract(ctx context.Context, query string) (KeywordResult, error) {
	var result KeywordResult
	if err := e.llm.CompleteStructured(ctx, keywordInstructions, query, keywordSchema, &result); err != nil {
		return KeywordResult{}, err
	}
	result.SearchQuery = strings.TrimSpace(result.SearchQuery)
	if result.SearchQuery == "" {
		return KeywordResult{}, &llm.SchemaViolationError{
			Schema: keywordSchema.Name,
			Detail: "empty search_query",
		}
	}
	return result, nil
}
