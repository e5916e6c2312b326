// Package summarizer condenses curated items through the language model
// under bounded concurrency. Transient failures retry with backoff and
// degrade to a deterministic local truncation; only permanent failures
// exclude an item, and nothing here ever aborts a run.
package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"dailybrief/internal/config"
	"dailybrief/internal/domain"
	"dailybrief/internal/ports"
	"dailybrief/pkg/retry"
)

// Summarizer fans item summarization out over a bounded worker pool.
type Summarizer struct {
	client        ports.SynopsisClient
	concurrency   int
	maxModelCalls int
	fallbackChars int
	policy        retry.Policy
	logger        *slog.Logger
}

// New wires the synopsis client; a nil client sends every item down the
// fallback path (deployments without an API key).
func New(client ports.SynopsisClient, cfg config.SummarizerConfig, logger *slog.Logger) *Summarizer {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	fallbackChars := cfg.FallbackChars
	if fallbackChars <= 0 {
		fallbackChars = 280
	}
	return &Summarizer{
		client:        client,
		concurrency:   concurrency,
		maxModelCalls: cfg.MaxModelCalls,
		fallbackChars: fallbackChars,
		policy: retry.Policy{
			MaxAttempts: cfg.MaxAttempts,
			BackoffBase: cfg.BackoffBase,
		},
		logger: logger,
	}
}

// Summarize processes every curated item concurrently, preserving input
// order in the result. Items beyond the top-story slice skip the model
// and take the excerpt path directly.
func (s *Summarizer) Summarize(ctx context.Context, items []domain.CuratedItem) []domain.SummarizedItem {
	results := make([]domain.SummarizedItem, len(items))

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item domain.CuratedItem) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.summarizeOne(ctx, item)
		}(i, item)
	}
	wg.Wait()

	return results
}

func (s *Summarizer) summarizeOne(ctx context.Context, item domain.CuratedItem) domain.SummarizedItem {
	if s.client == nil || (s.maxModelCalls > 0 && item.Rank > s.maxModelCalls) {
		return s.fallback(item)
	}

	synopsis, err := retry.Do(ctx, s.policy, func(ctx context.Context) (domain.Synopsis, error) {
		return s.client.Summarize(ctx, item.ContentItem)
	})
	if err == nil {
		return domain.SummarizedItem{CuratedItem: item, Synopsis: synopsis, Status: domain.StatusSucceeded}
	}

	if domain.ClassOf(err) == domain.FailurePermanent {
		s.warn("item excluded after permanent summarization failure", "title", item.Title, "error", err)
		return domain.SummarizedItem{CuratedItem: item, Status: domain.StatusExcluded}
	}

	s.warn("summarization retries exhausted, using excerpt fallback", "title", item.Title, "error", err)
	return s.fallback(item)
}

func (s *Summarizer) fallback(item domain.CuratedItem) domain.SummarizedItem {
	return domain.SummarizedItem{
		CuratedItem: item,
		Synopsis:    FallbackSynopsis(item.ContentItem, s.fallbackChars),
		Status:      domain.StatusFallback,
	}
}

// Intro synthesizes the greeting paragraph under the same retry policy as
// item summarization. Any failure yields the deterministic greeting
// instead of failing the run.
func (s *Summarizer) Intro(ctx context.Context, req ports.IntroRequest) string {
	if s.client == nil {
		return fallbackIntro(req)
	}

	intro, err := retry.Do(ctx, s.policy, func(ctx context.Context) (string, error) {
		return s.client.Intro(ctx, req)
	})
	if err != nil || intro == "" {
		s.warn("intro synthesis failed, using canned greeting", "error", err)
		return fallbackIntro(req)
	}
	return intro
}

func fallbackIntro(req ports.IntroRequest) string {
	return fmt.Sprintf(
		"Good morning, %s! Here's your personalized digest for %s, featuring %d stories across your selected topics.",
		req.Name, req.Date, req.StoryCount)
}

func (s *Summarizer) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
