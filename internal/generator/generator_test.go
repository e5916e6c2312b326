package generator

import (
	"strings"
	"testing"
	"time"

	"dailybrief/internal/domain"
)

func summarized(key, title string, rank int, status domain.SynopsisStatus) domain.SummarizedItem {
	return domain.SummarizedItem{
		CuratedItem: domain.CuratedItem{
			ContentItem: domain.ContentItem{
				Title:        title,
				URL:          "https://example.org/" + key,
				CanonicalKey: "https://example.org/" + key,
				SourceName:   "Example Wire",
				Category:     "technology",
				PublishedAt:  time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
			},
			Rank: rank,
		},
		Synopsis: domain.Synopsis{
			Hook:     "Hook for " + title,
			Summary:  "Summary for " + title,
			Takeaway: "Takeaway for " + title,
		},
		Status: status,
	}
}

func testInput() Input {
	items := []domain.SummarizedItem{
		summarized("alpha", "Alpha Story", 1, domain.StatusSucceeded),
		summarized("beta", "Beta Story", 2, domain.StatusSucceeded),
		summarized("gamma", "Gamma Story", 3, domain.StatusFallback),
	}
	return Input{
		RecipientName:  "Ada",
		Intro:          "Good morning, Ada!",
		DateLabel:      "Monday, March 10, 2025",
		Items:          items,
		UnsubscribeURL: "https://brief.example.org/unsubscribe/ada",
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	t.Parallel()

	g, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	in := testInput()

	html1, plain1, err := g.Render(in)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	html2, plain2, err := g.Render(in)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}

	if html1 != html2 {
		t.Fatal("html output differs between identical renders")
	}
	if plain1 != plain2 {
		t.Fatal("plain output differs between identical renders")
	}
}

func TestRenderSameOrderInBothRepresentations(t *testing.T) {
	t.Parallel()

	g, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	html, plain, err := g.Render(testInput())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	titles := []string{"Alpha Story", "Beta Story", "Gamma Story"}
	for _, body := range []string{html, plain} {
		last := -1
		for _, title := range titles {
			idx := strings.Index(body, title)
			if idx < 0 {
				t.Fatalf("title %q missing from output", title)
			}
			if idx < last {
				t.Fatalf("title %q out of order", title)
			}
			last = idx
		}
	}
}

func TestRenderSplitsTopStoriesAndQuickHits(t *testing.T) {
	t.Parallel()

	g, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	html, plain, err := g.Render(testInput())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if !strings.Contains(html, "Quick Hits") {
		t.Fatal("html missing quick hits section")
	}
	if !strings.Contains(plain, "QUICK HITS") {
		t.Fatal("plain missing quick hits section")
	}
	// Only top stories carry the takeaway box.
	if strings.Contains(html, "Takeaway for Gamma Story") {
		t.Fatal("quick hit should not render a takeaway")
	}
	if !strings.Contains(html, "Takeaway for Alpha Story") {
		t.Fatal("top story takeaway missing")
	}
}

func TestRenderRejectsExcludedItems(t *testing.T) {
	t.Parallel()

	g, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	in := testInput()
	in.Items = append(in.Items, summarized("delta", "Delta Story", 4, domain.StatusExcluded))

	if _, _, err := g.Render(in); err == nil {
		t.Fatal("expected error for excluded item in render input")
	}
}

func TestRenderQuickHitSummaryShortened(t *testing.T) {
	t.Parallel()

	g, err := New(1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	in := testInput()
	long := strings.Repeat("word ", 80)
	in.Items[1].Synopsis.Summary = long

	html, _, err := g.Render(in)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(html, long) {
		t.Fatal("quick hit summary should be shortened")
	}
}

func TestSubject(t *testing.T) {
	t.Parallel()

	got := Subject("Monday, March 10, 2025")
	if got != "Your Daily Brief — Monday, March 10, 2025" {
		t.Fatalf("unexpected subject %q", got)
	}
}

func TestRenderIncludesSourcesAndUnsubscribe(t *testing.T) {
	t.Parallel()

	g, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	html, plain, err := g.Render(testInput())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if !strings.Contains(html, "Example Wire") {
		t.Fatal("html missing source name")
	}
	if !strings.Contains(html, "https://brief.example.org/unsubscribe/ada") {
		t.Fatal("html missing unsubscribe link")
	}
	if !strings.Contains(plain, "Unsubscribe: https://brief.example.org/unsubscribe/ada") {
		t.Fatal("plain missing unsubscribe link")
	}
}
