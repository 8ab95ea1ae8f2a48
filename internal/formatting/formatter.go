// Package formatting renders a search summary as the Markdown block shown
// to the user.
package formatting

import (
	"fmt"
	"strings"

	"github.com/crs-platform/orchestrator/internal/agents"
	"github.com/crs-platform/orchestrator/internal/refs"
)

const (
	noSummaryPlaceholder    = "_No summary provided._"
	noReferencesPlaceholder = "_No references available._"
)

// FormatSummary renders the summary paragraph followed by a numbered
// reference list. References are deduplicated by canonical URL and capped;
// titles are Markdown-escaped, with the URL standing in for a missing title.
func FormatSummary(summary agents.SearchSummary) string {
	lines := []string{"", ""}

	text := strings.TrimSpace(summary.Summary)
	if text == "" {
		text = noSummaryPlaceholder
	}
	lines = append(lines, text, "", "**References:**")

	references := refs.Dedupe(summary.References, agents.MaxReferences)
	if len(references) == 0 {
		lines = append(lines, noReferencesPlaceholder)
	} else {
		for i, ref := range references {
			title := ref.Title
			if title == "" {
				title = ref.URL
			}
			lines = append(lines, fmt.Sprintf("%d. [%s](%s)", i+1, refs.EscapeMarkdown(title), ref.URL))
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}
