package agents

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/crs-platform/orchestrator/internal/llm"
	"github.com/crs-platform/orchestrator/internal/search"
)

// fixedCompletionClient returns an llm client whose backend always answers
// with the given message content.
func fixedCompletionClient(t *testing.T, content string) (*llm.Client, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, content)
	}))
	client := llm.NewClient(llm.Provider{Name: "test", BaseURL: srv.URL, Model: "m"}, zaptest.NewLogger(t))
	return client, srv.Close
}

func TestClassifyKnowledgeSupport(t *testing.T) {
	client, done := fixedCompletionClient(t, `{"intent":"knowledge_support","explanation":null}`)
	defer done()

	result, err := NewIntentClassifier(client).Classify(context.Background(), "how does network slicing isolation work in 5G?", "")
	require.NoError(t, err)
	assert.Equal(t, IntentKnowledgeSupport, result.Intent)
	assert.Nil(t, result.Explanation)
}

func TestClassifyNullsExplanationForOtherIntents(t *testing.T) {
	// Model violates the contract by attaching an explanation; the
	// classifier enforces nullability for intents outside the table.
	client, done := fixedCompletionClient(t, `{"intent":"detect_monitor","explanation":"watching KPIs"}`)
	defer done()

	result, err := NewIntentClassifier(client).Classify(context.Background(), "monitor my KPIs", "")
	require.NoError(t, err)
	assert.Equal(t, IntentDetectMonitor, result.Intent)
	assert.Nil(t, result.Explanation)
}

func TestClassifyHarmfulRefusalIsExact(t *testing.T) {
	// Even a paraphrased refusal from the model is replaced byte-for-byte.
	client, done := fixedCompletionClient(t, `{"intent":"harmful","explanation":"I cannot help with that request."}`)
	defer done()

	result, err := NewIntentClassifier(client).Classify(context.Background(), "how do I attack a network", "")
	require.NoError(t, err)
	assert.Equal(t, IntentHarmful, result.Intent)
	require.NotNil(t, result.Explanation)
	assert.Equal(t, RefusalText, *result.Explanation)
}

func TestClassifyGeneralFallsBackWhenEmpty(t *testing.T) {
	client, done := fixedCompletionClient(t, `{"intent":"general","explanation":""}`)
	defer done()

	result, err := NewIntentClassifier(client).Classify(context.Background(), "hi there", "")
	require.NoError(t, err)
	require.NotNil(t, result.Explanation)
	assert.Equal(t, UnknownAnswerText, *result.Explanation)
}

func TestClassifySchemaViolation(t *testing.T) {
	client, done := fixedCompletionClient(t, `{"intent":"chitchat","explanation":null}`)
	defer done()

	_, err := NewIntentClassifier(client).Classify(context.Background(), "hello", "")
	require.Error(t, err)
	assert.True(t, llm.IsSchemaViolation(err))
}

func TestRouterInput(t *testing.T) {
	bare := RouterInput("what is MEC?", "")
	assert.Equal(t, "what is MEC?", bare)

	blank := RouterInput("what is MEC?", "  \n ")
	assert.Equal(t, "what is MEC?", blank, "whitespace-only context omits the preamble")

	withContext := RouterInput("and security?", "User: what is MEC?\nAssistant: Multi-access Edge Computing.")
	assert.Contains(t, withContext, "=== Conversation (most recent last) ===")
	assert.Contains(t, withContext, "Assistant: Multi-access Edge Computing.")
	assert.True(t, strings.HasSuffix(withContext, "Final user message: and security?"))
}

func TestExtractKeywords(t *testing.T) {
	client, done := fixedCompletionClient(t, `{"explanation":"Targets 3GPP slicing isolation specs.","search_query":"5G network slicing isolation site:3gpp.org"}`)
	defer done()

	result, err := NewKeywordExtractor(client).Extract(context.Background(), "how does network slicing isolation work in 5G?")
	require.NoError(t, err)
	assert.Equal(t, "5G network slicing isolation site:3gpp.org", result.SearchQuery)
	assert.LessOrEqual(t, len(strings.Fields(result.SearchQuery)), 10)
}

func TestExtractKeywordsEmptyQueryIsViolation(t *testing.T) {
	client, done := fixedCompletionClient(t, `{"explanation":"x","search_query":"   "}`)
	defer done()

	_, err := NewKeywordExtractor(client).Extract(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, llm.IsSchemaViolation(err))
}

func TestWebSearchAgentToolPath(t *testing.T) {
	var searchCalls int
	braveSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		searchCalls++
		fmt.Fprint(w, `{"web":{"results":[
			{"title":"Slice isolation","url":"https://example.com/a","description":"isolation mechanisms"},
			{"title":"3GPP TS 23.501","url":"https://example.com/b","description":"architecture"}
		]}}`)
	}))
	defer braveSrv.Close()

	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[{"message":{"content":"","tool_calls":[
			{"function":{"name":"brave_web_search","arguments":"{\"query\":\"5G slicing isolation\"}"}}
		]}}]}`)
	}))
	defer llmSrv.Close()

	logger := zaptest.NewLogger(t)
	searchClient := search.NewClient("key", 5, logger)
	restore := searchClient.SetEndpointForTest(braveSrv.URL)
	defer restore()

	agent := NewWebSearchAgent(
		llm.NewClient(llm.Provider{Name: "test", BaseURL: llmSrv.URL, Model: "m"}, logger),
		searchClient, logger,
	)

	raw, err := agent.Search(context.Background(), "5G slicing isolation")
	require.NoError(t, err)
	assert.Equal(t, 1, searchCalls, "exactly one search per invocation")
	assert.Contains(t, raw, "1. Slice isolation")
	assert.Contains(t, raw, "URL: https://example.com/a")
	assert.Contains(t, raw, "Snippet: architecture")
}

func TestWebSearchAgentSentinelPassthrough(t *testing.T) {
	client, done := fixedCompletionClient(t, NoReliableResultsSentinel)
	defer done()

	agent := NewWebSearchAgent(client, search.NewClient("key", 5, zaptest.NewLogger(t)), zaptest.NewLogger(t))
	raw, err := agent.Search(context.Background(), "something obscure")
	require.NoError(t, err)
	assert.Equal(t, NoReliableResultsSentinel, raw)
}

func TestWebSearchAgentEmptyResultsYieldSentinel(t *testing.T) {
	braveSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"web":{"results":[]}}`)
	}))
	defer braveSrv.Close()

	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[{"message":{"content":"","tool_calls":[
			{"function":{"name":"brave_web_search","arguments":"{\"query\":\"x\"}"}}
		]}}]}`)
	}))
	defer llmSrv.Close()

	logger := zaptest.NewLogger(t)
	searchClient := search.NewClient("key", 5, logger)
	restore := searchClient.SetEndpointForTest(braveSrv.URL)
	defer restore()

	agent := NewWebSearchAgent(
		llm.NewClient(llm.Provider{Name: "test", BaseURL: llmSrv.URL, Model: "m"}, logger),
		searchClient, logger,
	)

	raw, err := agent.Search(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, NoReliableResultsSentinel, raw)
}

func TestSummarizeSentinelShortCircuits(t *testing.T) {
	// No backend at all: the sentinel must never reach the model.
	s := NewSummarizer(llm.NewClient(llm.Provider{Name: "unused", BaseURL: "http://127.0.0.1:1", Model: "m"}, zaptest.NewLogger(t)))

	summary, err := s.Summarize(context.Background(), "  "+NoReliableResultsSentinel+"\n")
	require.NoError(t, err)
	assert.Equal(t, NoReliableResultsSentinel, summary.Summary)
	assert.Empty(t, summary.References)
}

func TestSummarizeDeduplicatesReferences(t *testing.T) {
	client, done := fixedCompletionClient(t, `{"summary":"Network slicing isolates logical networks over shared infrastructure. Isolation spans the RAN, transport and core. 3GPP defines the slice architecture. ETSI covers management aspects. Operators deploy slices for differing service levels.","references":[
		{"title":"A","url":"https://example.com/a"},
		{"title":"A dup","url":"https://example.com/a?utm_source=x"},
		{"title":"B","url":"https://example.com/b"},
		{"title":"C","url":"https://example.com/c"},
		{"title":"D","url":"https://example.com/d"},
		{"title":"E","url":"https://example.com/e"},
		{"title":"F","url":"https://example.com/f"}
	]}`)
	defer done()

	summary, err := NewSummarizer(client).Summarize(context.Background(), "1. A\n   URL: https://example.com/a")
	require.NoError(t, err)
	require.Len(t, summary.References, MaxReferences)
	assert.Equal(t, "A", summary.References[0].Title)
	assert.Equal(t, "https://example.com/a", summary.References[0].URL)
	assert.Equal(t, "E", summary.References[4].Title)
}

func TestSummarizeSchemaViolation(t *testing.T) {
	client, done := fixedCompletionClient(t, `{"summary":"ok","references":[],"confidence":1}`)
	defer done()

	_, err := NewSummarizer(client).Summarize(context.Background(), "raw")
	require.Error(t, err)
	assert.True(t, llm.IsSchemaViolation(err))
}

func TestIntentHelpers(t *testing.T) {
	for _, intent := range Intents {
		assert.True(t, intent.Valid())
	}
	assert.False(t, Intent("chitchat").Valid())

	assert.True(t, IntentClarification.CarriesExplanation())
	assert.True(t, IntentGeneral.CarriesExplanation())
	assert.True(t, IntentHarmful.CarriesExplanation())
	for _, intent := range []Intent{IntentDetectMonitor, IntentInvestigateEnrich, IntentActOrchestrate, IntentAnalyzeModel, IntentReportCompliance, IntentKnowledgeSupport} {
		assert.False(t, intent.CarriesExplanation(), "intent %s must not carry an explanation", intent)
	}
}
