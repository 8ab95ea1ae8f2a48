package refs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "basic URL unchanged",
			input:    "https://example.com/path",
			expected: "https://example.com/path",
		},
		{
			name:     "host lowercased",
			input:    "https://Example.COM/Path",
			expected: "https://example.com/Path",
		},
		{
			name:     "scheme lowercased",
			input:    "HTTPS://example.com/path",
			expected: "https://example.com/path",
		},
		{
			name:     "utm parameters stripped",
			input:    "https://example.com/path?utm_source=x&utm_medium=email",
			expected: "https://example.com/path",
		},
		{
			name:     "utm stripped case-insensitively",
			input:    "https://example.com/path?UTM_Source=x&id=7",
			expected: "https://example.com/path?id=7",
		},
		{
			name:     "non-tracking parameter order preserved",
			input:    "https://example.com/search?z=1&utm_campaign=c&a=2",
			expected: "https://example.com/search?z=1&a=2",
		},
		{
			name:     "fragment dropped",
			input:    "https://example.com/path#section-2",
			expected: "https://example.com/path",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  https://example.com/path  ",
			expected: "https://example.com/path",
		},
		{
			name:     "blank query values kept",
			input:    "https://example.com/p?a=&b=2",
			expected: "https://example.com/p?a=&b=2",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeURL(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestNormalizeURLIdempotent(t *testing.T) {
	inputs := []string{
		"https://Example.com/Path?utm_source=x&id=1#frag",
		"http://docs.etsi.org/standard?b=2&a=1",
		"https://example.com",
	}
	for _, in := range inputs {
		once, err := NormalizeURL(in)
		require.NoError(t, err)
		twice, err := NormalizeURL(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "normalization should be idempotent for %q", in)
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`plain title`, `plain title`},
		{`a*b`, `a\*b`},
		{`under_score`, `under\_score`},
		{`[link](url)`, `\[link\]\(url\)`},
		{`#heading`, `\#heading`},
		{"code `x`", "code \\`x\\`"},
		{`back\slash`, `back\\slash`},
		// Backslash is escaped first, so pre-escaped input gains one level
		// instead of collapsing.
		{`already \* escaped`, `already \\\* escaped`},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, EscapeMarkdown(tc.input))
	}
}

func TestEscapeMarkdownPreservesIdentifiability(t *testing.T) {
	// Two inputs differing only in one special character must not collapse.
	a := EscapeMarkdown(`5G *slicing*`)
	b := EscapeMarkdown(`5G \*slicing\*`)
	assert.NotEqual(t, a, b)
}

func TestDedupe(t *testing.T) {
	refs := []Reference{
		{Title: "First", URL: "https://example.com/a"},
		{Title: "Tracking dup", URL: "https://example.com/a?utm_source=x"},
		{Title: "Case dup", URL: "https://EXAMPLE.com/a"},
		{Title: "Second", URL: "https://example.com/b"},
		{Title: "Broken", URL: "://not-a-url"},
		{Title: "Empty", URL: ""},
		{Title: "Third", URL: "https://example.com/c"},
	}

	got := Dedupe(refs, 5)
	require.Len(t, got, 3)
	assert.Equal(t, "First", got[0].Title)
	assert.Equal(t, "https://example.com/a", got[0].URL)
	assert.Equal(t, "Second", got[1].Title)
	assert.Equal(t, "Third", got[2].Title)
}

func TestDedupeLimit(t *testing.T) {
	refs := []Reference{
		{Title: "1", URL: "https://example.com/1"},
		{Title: "2", URL: "https://example.com/2"},
		{Title: "3", URL: "https://example.com/3"},
	}
	got := Dedupe(refs, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Title)
	assert.Equal(t, "2", got[1].Title)

	assert.Nil(t, Dedupe(refs, 0))
}

func TestDedupeNoDuplicateNormalizedURLs(t *testing.T) {
	refs := []Reference{
		{Title: "a", URL: "https://example.com/x?utm_source=1"},
		{Title: "b", URL: "https://example.com/x?utm_source=2"},
		{Title: "c", URL: "https://example.com/x#top"},
		{Title: "d", URL: "https://example.com/y"},
	}
	got := Dedupe(refs, 10)
	seen := map[string]bool{}
	for _, r := range got {
		norm, err := NormalizeURL(r.URL)
		require.NoError(t, err)
		assert.False(t, seen[norm], "duplicate normalized URL %q", norm)
		seen[norm] = true
	}
	assert.Len(t, got, 2)
}
