package agents

import (
	"context"
	"fmt"

	"github.com/crs-platform/orchestrator/internal/llm"
)

// IntentClassifier maps a user query, with optional conversation context, to
// one of the nine routing intents.
type IntentClassifier struct {
	llm *llm.Client
}

// NewIntentClassifier binds the classifier to a completion backend.
func NewIntentClassifier(client *llm.Client) *IntentClassifier {
	return &IntentClassifier{llm: client}
}

// Classify runs one schema-constrained classification round. The returned
// result always satisfies the explanation contract: explanation is non-nil
// only for clarification, general and harmful, and the harmful refusal is
// the fixed text verbatim regardless of what the model produced.
func (c *IntentClassifier) Classify(ctx context.Context, query, conversationContext string) (ClassificationResult, error) {
	var result ClassificationResult
	input := RouterInput(query, conversationContext)
	if err := c.llm.CompleteStructured(ctx, routerInstructions, input, classificationSchema, &result); err != nil {
		return ClassificationResult{}, err
	}
	if !result.Intent.Valid() {
		return ClassificationResult{}, &llm.SchemaViolationError{
			Schema: classificationSchema.Name,
			Detail: fmt.Sprintf("unknown intent %q", result.Intent),
		}
	}
	return enforceExplanationContract(result), nil
}

// enforceExplanationContract normalizes the explanation field so downstream
// code can rely on it without re-checking the intent table.
func enforceExplanationContract(result ClassificationResult) ClassificationResult {
	switch {
	case !result.Intent.CarriesExplanation():
		result.Explanation = nil
	case result.Intent == IntentHarmful:
		refusal := RefusalText
		result.Explanation = &refusal
	case result.Intent == IntentGeneral && (result.Explanation == nil || *result.Explanation == ""):
		unknown := UnknownAnswerText
		result.Explanation = &unknown
	}
	return result
}
