// Package curator selects and orders the items one recipient's digest is
// built from. Curation is pure: identical input items and reference time
// produce identical output, with ties broken by canonical key.
package curator

import (
	"math"
	"sort"
	"time"

	"dailybrief/internal/config"
	"dailybrief/internal/domain"
)

// Curator filters fetched items by recipient interests, deduplicates,
// ranks, and truncates to the per-recipient item budget.
type Curator struct {
	maxItems       int
	recencyWeight  float64
	priorityWeight float64
	halfLifeHours  float64
}

// New builds a curator from configuration, applying defaults to unset
// fields.
func New(cfg config.CuratorConfig) *Curator {
	c := &Curator{
		maxItems:       cfg.MaxItems,
		recencyWeight:  cfg.RecencyWeight,
		priorityWeight: cfg.PriorityWeight,
		halfLifeHours:  cfg.HalfLifeHours,
	}
	if c.maxItems <= 0 {
		c.maxItems = 13
	}
	if c.recencyWeight <= 0 {
		c.recencyWeight = 1.0
	}
	if c.priorityWeight < 0 {
		c.priorityWeight = 0
	}
	if c.halfLifeHours <= 0 {
		c.halfLifeHours = 24
	}
	return c
}

// Curate runs the selection steps in order: interest filter, dedupe by
// canonical key (earliest fetch wins), score, deterministic sort, top-N
// cut. Zero survivors is a valid result.
func (c *Curator) Curate(items []domain.ContentItem, interests []string, now time.Time) []domain.CuratedItem {
	wanted := make(map[string]struct{}, len(interests))
	for _, slug := range interests {
		wanted[slug] = struct{}{}
	}

	byKey := make(map[string]domain.ContentItem)
	order := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := wanted[item.Category]; !ok {
			continue
		}
		existing, seen := byKey[item.CanonicalKey]
		if seen && !item.FetchedAt.Before(existing.FetchedAt) {
			continue
		}
		if !seen {
			order = append(order, item.CanonicalKey)
		}
		byKey[item.CanonicalKey] = item
	}

	curated := make([]domain.CuratedItem, 0, len(order))
	for _, key := range order {
		item := byKey[key]
		curated = append(curated, domain.CuratedItem{
			ContentItem: item,
			Score:       c.score(item, now),
		})
	}

	sort.Slice(curated, func(i, j int) bool {
		if curated[i].Score != curated[j].Score {
			return curated[i].Score > curated[j].Score
		}
		return curated[i].CanonicalKey < curated[j].CanonicalKey
	})

	if len(curated) > c.maxItems {
		curated = curated[:c.maxItems]
	}
	for i := range curated {
		curated[i].Rank = i + 1
	}
	return curated
}

// score combines recency decay with source-kind priority. Items without a
// publish date get no recency credit, pushing them below dated peers.
func (c *Curator) score(item domain.ContentItem, now time.Time) float64 {
	recency := 0.0
	if !item.PublishedAt.IsZero() {
		ageHours := now.Sub(item.PublishedAt).Hours()
		if ageHours < 0 {
			ageHours = 0
		}
		recency = math.Pow(0.5, ageHours/c.halfLifeHours)
	}
	return c.recencyWeight*recency + c.priorityWeight*item.Kind.Priority()
}
