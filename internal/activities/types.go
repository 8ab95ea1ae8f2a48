package activities

// ClassifyInput is the input for intent classification.
type ClassifyInput struct {
	Query string
	// ConversationContext is the rendered prior-turn context, or empty for
	// a fresh conversation.
	ConversationContext string
}

// KeywordInput is the input for search-phrase extraction.
type KeywordInput struct {
	Query string
}

// WebSearchInput carries the extracted search phrase.
type WebSearchInput struct {
	SearchQuery string
}

// WebSearchResult is the raw, unprocessed search agent output. Opaque to the
// workflow; only the summarizer interprets it.
type WebSearchResult struct {
	Raw string
}

// SummarizeInput carries raw search output to the summarizer.
type SummarizeInput struct {
	RawResult string
}
