package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dailybrief/internal/domain"
	"dailybrief/internal/source"
)

// category slugs the headline API understands natively
var headlineCategories = map[string]string{
	"technology": "technology",
	"business":   "business",
	"science":    "science",
	"health":     "health",
	"sports":     "sports",
}

// HeadlineStrategy pulls a NewsAPI-style top-headlines endpoint.
type HeadlineStrategy struct {
	client         *http.Client
	apiKey         string
	maxAge         time.Duration
	perSourceLimit int
}

var _ source.Strategy = (*HeadlineStrategy)(nil)

// NewHeadlineStrategy wires the headline API client.
func NewHeadlineStrategy(client *http.Client, apiKey string, freshnessHours, perSourceLimit int) *HeadlineStrategy {
	if client == nil {
		client = &http.Client{}
	}
	if freshnessHours <= 0 {
		freshnessHours = 48
	}
	if perSourceLimit <= 0 {
		perSourceLimit = 10
	}
	return &HeadlineStrategy{
		client:         client,
		apiKey:         apiKey,
		maxAge:         time.Duration(freshnessHours) * time.Hour,
		perSourceLimit: perSourceLimit,
	}
}

// Kind identifies the strategy inside the registry.
func (s *HeadlineStrategy) Kind() domain.SourceKind {
	return domain.KindHeadlineAPI
}

// Fetch queries the headline endpoint for the descriptor's category and
// normalizes the JSON payload.
func (s *HeadlineStrategy) Fetch(ctx context.Context, desc source.Descriptor, now time.Time) ([]domain.ContentItem, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("headline api key not configured")
	}

	endpoint, err := s.buildURL(desc)
	if err != nil {
		return nil, err
	}

	payload, err := fetchBody(ctx, s.client, endpoint, s.apiKey)
	if err != nil {
		return nil, err
	}

	var resp headlineResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decode headlines: %w", err)
	}
	if resp.Status != "" && resp.Status != "ok" {
		return nil, fmt.Errorf("headline api status %s: %s", resp.Status, resp.Message)
	}

	items := make([]domain.ContentItem, 0, len(resp.Articles))
	for _, article := range resp.Articles {
		title := collapseWhitespace(article.Title)
		excerpt := normalizeExcerpt(article.Description)
		if title == "" || excerpt == "" {
			continue
		}

		published := parseDate(article.PublishedAt)
		if !fresh(published, now, s.maxAge) {
			continue
		}

		sourceName := article.Source.Name
		if sourceName == "" {
			sourceName = desc.ID
		}

		link := strings.TrimSpace(article.URL)
		items = append(items, domain.ContentItem{
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
		})
		if len(items) >= s.perSourceLimit {
			break
		}
	}
	return items, nil
}

func (s *HeadlineStrategy) buildURL(desc source.Descriptor) (string, error) {
	parsed, err := url.Parse(desc.URL)
	if err != nil {
		return "", fmt.Errorf("invalid headline url %s: %w", desc.URL, err)
	}

	category := headlineCategories[desc.Category]
	if category == "" {
		category = desc.Category
	}

	query := parsed.Query()
	query.Set("category", category)
	query.Set("language", "en")
	query.Set("pageSize", strconv.Itoa(s.perSourceLimit))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

type headlineResponse struct {
	Status   string            `json:"status"`
	Message  string            `json:"message"`
	Articles []headlineArticle `json:"articles"`
}

type headlineArticle struct {
	Title       string         `json:"title"`
	URL         string         `json:"url"`
	Description string         `json:"description"`
	PublishedAt string         `json:"publishedAt"`
	Source      headlineSource `json:"source"`
}

type headlineSource struct {
	Name string `json:"name"`
}
