package agents

import (
	"github.com/crs-platform/orchestrator/internal/refs"
)

// Intent is the routing category assigned to a user query.
type Intent string

const (
	IntentClarification     Intent = "clarification"
	IntentDetectMonitor     Intent = "detect_monitor"
	IntentInvestigateEnrich Intent = "investigate_enrich"
	IntentActOrchestrate    Intent = "act_orchestrate"
	IntentAnalyzeModel      Intent = "analyze_model"
	IntentReportCompliance  Intent = "report_compliance"
	IntentKnowledgeSupport  Intent = "knowledge_support"
	IntentGeneral           Intent = "general"
	IntentHarmful           Intent = "harmful"
)

// Intents lists every routing category the classifier may return.
var Intents = []Intent{
	IntentClarification,
	IntentDetectMonitor,
	IntentInvestigateEnrich,
	IntentActOrchestrate,
	IntentAnalyzeModel,
	IntentReportCompliance,
	IntentKnowledgeSupport,
	IntentGeneral,
	IntentHarmful,
}

// Valid reports whether the intent is one of the nine known categories.
func (i Intent) Valid() bool {
	for _, known := range Intents {
		if i == known {
			return true
		}
	}
	return false
}

// CarriesExplanation reports whether the explanation field is meaningful for
// this intent. For every other intent the explanation must be nil.
func (i Intent) CarriesExplanation() bool {
	switch i {
	case IntentClarification, IntentGeneral, IntentHarmful:
		return true
	}
	return false
}

// Fixed response strings. These are contractual output, not copy: callers and
// downstream UIs match on them byte-for-byte.
const (
	// RefusalText is returned verbatim for harmful queries.
	RefusalText = "Sorry, I am not supposed to answer that."

	// UnknownAnswerText is the fallback for general queries the model cannot
	// answer from its own knowledge.
	UnknownAnswerText = "Sorry I don't know the answer to that."

	// NoReliableResultsSentinel is the soft-failure marker the web search
	// agent emits instead of result data. It propagates through the
	// summarizer as low-confidence content rather than being discarded.
	NoReliableResultsSentinel = "No reliable web information found."
)

// ClassificationResult is the router decision for a single user query.
type ClassificationResult struct {
	Intent      Intent  `json:"intent"`
	Explanation *string `json:"explanation"`
}

// KeywordResult is one web-search phrase plus the rationale for choosing it.
type KeywordResult struct {
	Explanation string `json:"explanation"`
	SearchQuery string `json:"search_query"`
}

// SearchSummary is the schema-constrained summarizer output: a neutral
// executive summary and the deduplicated references that informed it.
type SearchSummary struct {
	Summary    string           `json:"summary"`
	References []refs.Reference `json:"references"`
}
