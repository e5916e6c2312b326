package feed

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dailybrief/internal/domain"
	"dailybrief/internal/source"
)

const (
	userAgent       = "DailyBrief/1.0 (+https://dailybrief.example.org)"
	maxResponseSize = 5 << 20
)

// FeedStrategy pulls RSS 2.0 and Atom endpoints, the two sibling feed
// schemas, and normalizes both into content items.
type FeedStrategy struct {
	client         *http.Client
	maxAge         time.Duration
	perSourceLimit int
}

var _ source.Strategy = (*FeedStrategy)(nil)

// NewFeedStrategy wires an HTTP client; the client's own timeout is left
// to the caller-supplied context.
func NewFeedStrategy(client *http.Client, freshnessHours, perSourceLimit int) *FeedStrategy {
	if client == nil {
		client = &http.Client{}
	}
	if freshnessHours <= 0 {
		freshnessHours = 48
	}
	if perSourceLimit <= 0 {
		perSourceLimit = 10
	}
	return &FeedStrategy{
		client:         client,
		maxAge:         time.Duration(freshnessHours) * time.Hour,
		perSourceLimit: perSourceLimit,
	}
}

// Kind identifies the strategy inside the registry.
func (s *FeedStrategy) Kind() domain.SourceKind {
	return domain.KindFeed
}

// Fetch downloads the feed document and parses whichever schema it uses.
func (s *FeedStrategy) Fetch(ctx context.Context, desc source.Descriptor, now time.Time) ([]domain.ContentItem, error) {
	payload, err := fetchBody(ctx, s.client, desc.URL, "")
	if err != nil {
		return nil, err
	}

	var entries []feedEntry
	var sourceName string
	switch sniffSchema(payload) {
	case schemaAtom:
		sourceName, entries, err = parseAtom(payload)
	case schemaRSS:
		sourceName, entries, err = parseRSS(payload)
	default:
		return nil, fmt.Errorf("unrecognized feed schema at %s", desc.URL)
	}
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	if sourceName == "" {
		sourceName = desc.URL
	}

	items := make([]domain.ContentItem, 0, len(entries))
	for _, entry := range entries {
		item, ok := normalizeEntry(entry, desc, sourceName, now, s.maxAge)
		if !ok {
			continue
		}
		items = append(items, item)
		if len(items) >= s.perSourceLimit {
			break
		}
	}
	return items, nil
}

// feedEntry is the schema-independent shape both parsers produce.
type feedEntry struct {
	Title     string
	Link      string
	Excerpt   string
	Published string
}

// normalizeEntry turns a parsed entry into a ContentItem; entries missing
// a title or body are dropped, as are stale ones.
func normalizeEntry(entry feedEntry, desc source.Descriptor, sourceName string, now time.Time, maxAge time.Duration) (domain.ContentItem, bool) {
	title := collapseWhitespace(entry.Title)
	excerpt := normalizeExcerpt(entry.Excerpt)
	if title == "" || excerpt == "" {
		return domain.ContentItem{}, false
	}

	published := parseDate(entry.Published)
	if !fresh(published, now, maxAge) {
		return domain.ContentItem{}, false
	}

	link := strings.TrimSpace(entry.Link)
	return domain.ContentItem{
		SourceID:     desc.ID,
		SourceName:   sourceName,
		Kind:         desc.Kind,
		Title:        title,
		URL:          link,
		CanonicalKey: domain.CanonicalKey(link, title, desc.ID),
		Excerpt:      excerpt,
		Category:     desc.Category,
		PublishedAt:  published,
		FetchedAt:    now,
	}, true
}

func fetchBody(ctx context.Context, client *http.Client, rawURL, apiKeyHeader string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if apiKeyHeader != "" {
		req.Header.Set("X-Api-Key", apiKeyHeader)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("endpoint returned %s", resp.Status)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return payload, nil
}

type feedSchema int

const (
	schemaUnknown feedSchema = iota
	schemaRSS
	schemaAtom
)

// sniffSchema inspects the document's root element.
func sniffSchema(payload []byte) feedSchema {
	decoder := xml.NewDecoder(bytes.NewReader(payload))
	for {
		token, err := decoder.Token()
		if err != nil {
			return schemaUnknown
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch strings.ToLower(start.Name.Local) {
		case "rss", "rdf":
			return schemaRSS
		case "feed":
			return schemaAtom
		default:
			return schemaUnknown
		}
	}
}
