package agents

import "github.com/crs-platform/orchestrator/internal/llm"

// JSON schemas enforced on model output. Validation happens inside the llm
// client; a response that fails these fails the whole query with a
// SchemaViolationError.

var classificationSchema = llm.MustSchema("classification", `{
	"type": "object",
	"properties": {
		"intent": {
			"type": "string",
			"enum": [
				"clarification",
				"detect_monitor",
				"investigate_enrich",
				"act_orchestrate",
				"analyze_model",
				"report_compliance",
				"knowledge_support",
				"general",
				"harmful"
			]
		},
		"explanation": {"type": ["string", "null"]}
	},
	"required": ["intent", "explanation"],
	"additionalProperties": false
}`)

var keywordSchema = llm.MustSchema("keywords", `{
	"type": "object",
	"properties": {
		"explanation": {"type": "string"},
		"search_query": {"type": "string"}
	},
	"required": ["explanation", "search_query"],
	"additionalProperties": false
}`)

var searchSummarySchema = llm.MustSchema("search_summary", `{
	"type": "object",
	"properties": {
		"summary": {"type": "string"},
		"references": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"title": {"type": "string"},
					"url": {"type": "string"}
				},
				"required": ["title", "url"],
				"additionalProperties": false
			}
		}
	},
	"required": ["summary", "references"],
	"additionalProperties": false
}`)
