package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dailybrief/internal/domain"
	"dailybrief/internal/source"
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

const rssPayload = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Example Tech</title>
    <item>
      <title>Fresh Story</title>
      <link>https://example.org/fresh?utm_source=rss</link>
      <description>&lt;p&gt;Something &lt;b&gt;new&lt;/b&gt; happened.&lt;/p&gt;</description>
      <pubDate>Mon, 10 Mar 2025 09:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Stale Story</title>
      <link>https://example.org/stale</link>
      <description>old news</description>
      <pubDate>Sat, 01 Mar 2025 09:00:00 +0000</pubDate>
    </item>
    <item>
      <title></title>
      <link>https://example.org/untitled</link>
      <description>no title</description>
    </item>
  </channel>
</rss>`

const atomPayload = `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Atom</title>
  <entry>
    <title>Atom Entry</title>
    <link rel="alternate" href="https://example.org/atom-entry"/>
    <summary>An atom summary.</summary>
    <updated>2025-03-10T08:30:00Z</updated>
  </entry>
  <entry>
    <title>Bodyless</title>
    <link href="https://example.org/bodyless"/>
    <updated>2025-03-10T08:30:00Z</updated>
  </entry>
</feed>`

func TestSniffSchema(t *testing.T) {
	t.Parallel()

	if got := sniffSchema([]byte(rssPayload)); got != schemaRSS {
		t.Fatalf("expected rss, got %v", got)
	}
	if got := sniffSchema([]byte(atomPayload)); got != schemaAtom {
		t.Fatalf("expected atom, got %v", got)
	}
	if got := sniffSchema([]byte(`{"articles":[]}`)); got != schemaUnknown {
		t.Fatalf("expected unknown, got %v", got)
	}
}

func TestFeedStrategyParsesRSS(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssPayload))
	}))
	defer server.Close()

	strategy := NewFeedStrategy(server.Client(), 48, 10)
	desc := source.Descriptor{ID: "example", Kind: domain.KindFeed, URL: server.URL, Category: "technology"}

	items, err := strategy.Fetch(context.Background(), desc, testNow)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("expected 1 item (stale and untitled dropped), got %d", len(items))
	}

	item := items[0]
	if item.Title != "Fresh Story" {
		t.Fatalf("unexpected title: %s", item.Title)
	}
	if item.Excerpt != "Something new happened." {
		t.Fatalf("markup not stripped: %q", item.Excerpt)
	}
	if item.SourceName != "Example Tech" {
		t.Fatalf("unexpected source name: %s", item.SourceName)
	}
	if item.Category != "technology" {
		t.Fatalf("unexpected category: %s", item.Category)
	}
	if item.CanonicalKey != "https://example.org/fresh" {
		t.Fatalf("tracking params not stripped from key: %s", item.CanonicalKey)
	}
	if item.Kind != domain.KindFeed {
		t.Fatalf("unexpected kind: %s", item.Kind)
	}
}

func TestFeedStrategyParsesAtom(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(atomPayload))
	}))
	defer server.Close()

	strategy := NewFeedStrategy(server.Client(), 48, 10)
	desc := source.Descriptor{ID: "atomsrc", Kind: domain.KindFeed, URL: server.URL, Category: "science"}

	items, err := strategy.Fetch(context.Background(), desc, testNow)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("expected 1 item (bodyless dropped), got %d", len(items))
	}
	if items[0].URL != "https://example.org/atom-entry" {
		t.Fatalf("unexpected link: %s", items[0].URL)
	}
	if items[0].SourceName != "Example Atom" {
		t.Fatalf("unexpected source name: %s", items[0].SourceName)
	}
}

func TestHeadlineStrategyFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("category"); got != "technology" {
			t.Errorf("unexpected category param: %s", got)
		}
		if got := r.Header.Get("X-Api-Key"); got != "secret" {
			t.Errorf("api key header missing, got %q", got)
		}
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{"title": "Headline One", "url": "https://news.example.org/one",
				 "description": "Big story.", "publishedAt": "2025-03-10T10:00:00Z",
				 "source": {"name": "Example Wire"}},
				{"title": "", "url": "https://news.example.org/untitled",
				 "description": "dropped", "publishedAt": "2025-03-10T10:00:00Z",
				 "source": {"name": "Example Wire"}}
			]
		}`))
	}))
	defer server.Close()

	strategy := NewHeadlineStrategy(server.Client(), "secret", 48, 5)
	desc := source.Descriptor{ID: "newsapi-tech", Kind: domain.KindHeadlineAPI, URL: server.URL, Category: "technology"}

	items, err := strategy.Fetch(context.Background(), desc, testNow)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].SourceName != "Example Wire" {
		t.Fatalf("unexpected source name: %s", items[0].SourceName)
	}
	if items[0].Kind != domain.KindHeadlineAPI {
		t.Fatalf("unexpected kind: %s", items[0].Kind)
	}
}

func TestFetcherIsolatesSourceFailures(t *testing.T) {
	t.Parallel()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssPayload))
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()

	registry := source.NewRegistry()
	registry.Register(NewFeedStrategy(http.DefaultClient, 48, 10))

	descriptors := []source.Descriptor{
		{ID: "good", Kind: domain.KindFeed, URL: good.URL, Category: "technology"},
		{ID: "bad", Kind: domain.KindFeed, URL: bad.URL, Category: "technology"},
	}

	fetcher := NewFetcher(registry, descriptors, 5*time.Second, nil)
	fetcher.now = func() time.Time { return testNow }

	items, failures := fetcher.FetchAll(context.Background())

	if len(items) != 1 {
		t.Fatalf("expected 1 item from the healthy source, got %d", len(items))
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if failures[0].SourceID != "bad" {
		t.Fatalf("unexpected failing source: %s", failures[0].SourceID)
	}
}

func TestParseDateLayouts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{name: "rfc1123z", input: "Mon, 10 Mar 2025 09:00:00 +0000"},
		{name: "rfc3339", input: "2025-03-10T09:00:00Z"},
		{name: "garbage", input: "last tuesday", zero: true},
		{name: "empty", input: "", zero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDate(tt.input)
			if got.IsZero() != tt.zero {
				t.Fatalf("parseDate(%q) = %v, wanted zero=%v", tt.input, got, tt.zero)
			}
		})
	}
}
