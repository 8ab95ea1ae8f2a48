package agents

import (
	"context"
	"strings"

	"github.com/crs-platform/orchestrator/internal/llm"
	"github.com/crs-platform/orchestrator/internal/refs"
)

// MaxReferences caps how many references a summary surfaces.
const MaxReferences = 5

// Summarizer condenses raw search output into a neutral executive summary
// with deduplicated references.
type Summarizer struct {
	llm *llm.Client
}

// NewSummarizer binds the summarizer to a completion backend.
func NewSummarizer(client *llm.Client) *Summarizer {
	return &Summarizer{llm: client}
}

// Summarize produces the schema-constrained summary. The no-reliable-results
// sentinel short-circuits: it is surfaced as the summary itself with no
// references, never handed to the model where it could be embellished.
func (s *Summarizer) Summarize(ctx context.Context, rawResult string) (SearchSummary, error) {
	if strings.TrimSpace(rawResult) == NoReliableResultsSentinel {
		return SearchSummary{Summary: NoReliableResultsSentinel}, nil
	}

	var summary SearchSummary
	if err := s.llm.CompleteStructured(ctx, summarizerInstructions, rawResult, searchSummarySchema, &summary); err != nil {
		return SearchSummary{}, err
	}

	// The prompt asks the model to deduplicate, but the contract is enforced
	// here: first occurrence per canonical URL, at most MaxReferences.
	summary.References = refs.Dedupe(summary.References, MaxReferences)
	return summary, nil
}
