package workflows

import "strings"

// DefaultMaxTurns is the number of user/assistant exchange pairs kept when
// rendering history for the classifier.
const DefaultMaxTurns = 6

// FormatHistoryContext renders prior turns into the compact text form the
// classifier consumes. Only user and assistant turns are kept, bounded to
// the last 2*maxTurns messages, most recent last. Returns "" when nothing
// survives the filter.
func FormatHistoryContext(history []Message, maxTurns int) string {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	kept := make([]Message, 0, len(history))
	for _, m := range history {
		if m.Role == "user" || m.Role == "assistant" {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return ""
	}

	limit := 2 * maxTurns
	if len(kept) > limit {
		kept = kept[len(kept)-limit:]
	}

	lines := make([]string, 0, len(kept))
	for _, m := range kept {
		prefix := "User: "
		if m.Role == "assistant" {
			prefix = "Assistant: "
		}
		lines = append(lines, prefix+m.Content)
	}
	return strings.Join(lines, "\n")
}
