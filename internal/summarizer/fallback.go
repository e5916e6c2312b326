package summarizer

import (
	"strings"

	"dailybrief/internal/domain"
)

// FallbackSynopsis builds the deterministic local synopsis used when the
// model is unavailable: the excerpt truncated to the nearest sentence
// boundary within limit runes. Hook and takeaway stay empty.
func FallbackSynopsis(item domain.ContentItem, limit int) domain.Synopsis {
	text := item.Excerpt
	if text == "" {
		text = item.Title
	}
	return domain.Synopsis{Summary: truncateToSentence(text, limit)}
}

func truncateToSentence(text string, limit int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	window := string(runes[:limit])
	cut := -1
	for _, boundary := range []string{". ", "! ", "? "} {
		if idx := strings.LastIndex(window, boundary); idx > cut {
			cut = idx
		}
	}
	if cut >= 0 {
		return strings.TrimSpace(window[:cut+1])
	}

	// No sentence boundary in range; break at the last word instead.
	if idx := strings.LastIndex(window, " "); idx > 0 {
		return strings.TrimSpace(window[:idx]) + "…"
	}
	return strings.TrimSpace(window) + "…"
}
