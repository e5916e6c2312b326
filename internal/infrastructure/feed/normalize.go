package feed

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const maxExcerptRunes = 500

var whitespaceExpr = regexp.MustCompile(`\s+`)

// stripHTML flattens markup in feed excerpts to plain text.
func stripHTML(raw string) string {
	if !strings.Contains(raw, "<") {
		return collapseWhitespace(raw)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return collapseWhitespace(raw)
	}
	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceExpr.ReplaceAllString(s, " "))
}

// normalizeExcerpt strips markup and caps the excerpt length.
func normalizeExcerpt(raw string) string {
	text := stripHTML(raw)
	runes := []rune(text)
	if len(runes) > maxExcerptRunes {
		return strings.TrimSpace(string(runes[:maxExcerptRunes]))
	}
	return text
}

// feed publish dates arrive as RFC 2822 (RSS) or ISO 8601 (Atom)
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05",
}

// parseDate tries the known feed date layouts; a zero time means unknown.
func parseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// fresh reports whether an item is young enough to include. Items without
// a parseable publish date are kept.
func fresh(published, now time.Time, maxAge time.Duration) bool {
	if published.IsZero() {
		return true
	}
	return !published.Before(now.Add(-maxAge))
}
