package constants

// Activity names used for workflow registration and execution.
// Using constants eliminates magic strings and ensures consistency.
const (
	ClassifyIntentActivity   = "ClassifyIntent"
	ExtractKeywordsActivity  = "ExtractKeywords"
	ExecuteWebSearchActivity = "ExecuteWebSearch"
	SummarizeResultsActivity = "SummarizeResults"
)
