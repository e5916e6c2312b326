package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// SourceKind enumerates the closed set of supported source variants.
type SourceKind string

const (
	KindFeed        SourceKind = "feed"
	KindHeadlineAPI SourceKind = "headline-api"
)

// Priority orders source kinds for ranking: curated headline APIs outrank
// open feeds at equal recency.
func (k SourceKind) Priority() float64 {
	if k == KindHeadlineAPI {
		return 1
	}
	return 0
}

// ContentItem is one normalized article fetched from a source. Immutable
// for the lifetime of a pipeline run.
type ContentItem struct {
	SourceID     string
	SourceName   string
	Kind         SourceKind
	Title        string
	URL          string
	CanonicalKey string
	Excerpt      string
	Category     string
	PublishedAt  time.Time
	FetchedAt    time.Time
}

// CuratedItem is a ContentItem selected and scored for one recipient.
type CuratedItem struct {
	ContentItem
	Score float64
	Rank  int
}

// SynopsisStatus tracks how an item's synopsis was produced.
type SynopsisStatus string

const (
	StatusSucceeded SynopsisStatus = "succeeded"
	StatusFallback  SynopsisStatus = "fallback-used"
	StatusExcluded  SynopsisStatus = "failed-excluded"
)

// Synopsis is the smart-brevity condensation of one article.
type Synopsis struct {
	Hook     string `json:"hook"`
	Summary  string `json:"summary"`
	Takeaway string `json:"takeaway"`
}

// SummarizedItem carries a curated item through rendering. Items with
// StatusExcluded must never reach the generator.
type SummarizedItem struct {
	CuratedItem
	Synopsis Synopsis
	Status   SynopsisStatus
}

// tracking params stripped during URL normalization
var trackingParams = []string{"fbclid", "gclid", "mc_cid", "mc_eid", "ref"}

// CanonicalKey derives the uniqueness key for an item: the normalized URL,
// or a title+source digest when no usable URL is present.
func CanonicalKey(rawURL, title, source string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		sum := sha256.Sum256([]byte(title + "|" + source))
		return hex.EncodeToString(sum[:8])
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")

	q := u.Query()
	for key := range q {
		if strings.HasPrefix(key, "utm_") {
			q.Del(key)
			continue
		}
		for _, p := range trackingParams {
			if key == p {
				q.Del(key)
			}
		}
	}
	u.RawQuery = q.Encode()

	return u.String()
}
