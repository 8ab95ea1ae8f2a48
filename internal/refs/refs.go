package refs

import (
	"net/url"
	"strings"
)

// Reference is a single web citation surfaced to the user.
type Reference struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// NormalizeURL canonicalizes a URL for comparison and display:
// scheme and host are lower-cased, query parameters whose key starts
// with "utm_" (case-insensitive) are removed, the order of the remaining
// parameters is preserved, and any fragment is dropped.
func NormalizeURL(rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.RawFragment = ""
	parsed.RawQuery = stripTrackingParams(parsed.RawQuery)

	return parsed.String(), nil
}

// stripTrackingParams removes utm_* pairs from a raw query string without
// reordering the remaining pairs. url.Values.Encode sorts keys, so the raw
// string is filtered in place instead.
func stripTrackingParams(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	pairs := strings.Split(rawQuery, "&")
	kept := pairs[:0]
	for _, pair := range pairs {
		key := pair
		if i := strings.Index(pair, "="); i >= 0 {
			key = pair[:i]
		}
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if strings.HasPrefix(strings.ToLower(key), "utm_") {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`(`, `\(`,
	`)`, `\)`,
	`#`, `\#`,
	"`", "\\`",
)

// EscapeMarkdown escapes Markdown control characters in text so titles render
// literally inside links. Backslashes are escaped first; the single-pass
// replacer never rescans inserted escapes, so no double-escaping occurs.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// Dedupe keeps the first occurrence per normalized URL, preserving input
// order, and stops once limit distinct references have been kept. References
// with empty or unparseable URLs are dropped. The returned references carry
// the normalized URL.
func Dedupe(references []Reference, limit int) []Reference {
	if limit <= 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(references))
	var kept []Reference
	for _, ref := range references {
		normalized, err := NormalizeURL(ref.URL)
		if err != nil || normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		kept = append(kept, Reference{Title: ref.Title, URL: normalized})
		if len(kept) >= limit {
			break
		}
	}
	return kept
}
