package summarizer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"dailybrief/internal/config"
	"dailybrief/internal/domain"
	"dailybrief/internal/ports"
	"dailybrief/pkg/retry"
)

// fakeClient scripts per-key failure sequences before a success.
type fakeClient struct {
	mu        sync.Mutex
	failures  map[string][]error
	calls     map[string]int
	introErr  error
	introText string
}

func newFakeClient() *fakeClient {
	return &fakeClient{failures: map[string][]error{}, calls: map[string]int{}, introText: "Hello there!"}
}

func (f *fakeClient) Summarize(ctx context.Context, item domain.ContentItem) (domain.Synopsis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[item.CanonicalKey]++
	if queue := f.failures[item.CanonicalKey]; len(queue) > 0 {
		err := queue[0]
		f.failures[item.CanonicalKey] = queue[1:]
		return domain.Synopsis{}, err
	}
	return domain.Synopsis{Hook: "hook", Summary: "model summary of " + item.Title, Takeaway: "takeaway"}, nil
}

func (f *fakeClient) Intro(ctx context.Context, req ports.IntroRequest) (string, error) {
	if f.introErr != nil {
		return "", f.introErr
	}
	return f.introText, nil
}

func curated(key string, rank int) domain.CuratedItem {
	return domain.CuratedItem{
		ContentItem: domain.ContentItem{
			Title:        "Title " + key,
			CanonicalKey: key,
			Excerpt:      "First sentence of " + key + ". Second sentence with more detail. Third one.",
		},
		Rank: rank,
	}
}

func testConfig() config.SummarizerConfig {
	return config.SummarizerConfig{
		Concurrency:   2,
		MaxModelCalls: 5,
		MaxAttempts:   3,
		BackoffBase:   time.Millisecond,
		FallbackChars: 280,
	}
}

func newTestSummarizer(client ports.SynopsisClient) *Summarizer {
	s := New(client, testConfig(), nil)
	s.policy = retry.Policy{MaxAttempts: 3, Sleep: func(ctx context.Context, d time.Duration) error { return nil }}
	return s
}

func TestSummarizeTransientFailuresThenSuccess(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.failures["a"] = []error{
		domain.Transient(errors.New("429")),
		domain.Transient(errors.New("timeout")),
	}

	got := newTestSummarizer(client).Summarize(context.Background(), []domain.CuratedItem{curated("a", 1)})

	if got[0].Status != domain.StatusSucceeded {
		t.Fatalf("expected succeeded after retries, got %s", got[0].Status)
	}
	if client.calls["a"] != 3 {
		t.Fatalf("expected 3 attempts, got %d", client.calls["a"])
	}
	if got[0].Synopsis.Summary == "" {
		t.Fatal("retried result missing synopsis")
	}
}

func TestSummarizeExhaustionFallsBack(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.failures["a"] = []error{
		domain.Transient(errors.New("503")),
		domain.Transient(errors.New("503")),
		domain.Transient(errors.New("503")),
	}

	got := newTestSummarizer(client).Summarize(context.Background(), []domain.CuratedItem{curated("a", 1)})

	if got[0].Status != domain.StatusFallback {
		t.Fatalf("expected fallback-used, got %s", got[0].Status)
	}
	if !strings.HasPrefix(got[0].Synopsis.Summary, "First sentence of a.") {
		t.Fatalf("fallback should truncate the excerpt, got %q", got[0].Synopsis.Summary)
	}
}

func TestSummarizePermanentFailureExcludesItemOnly(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.failures["bad"] = []error{domain.Permanent(errors.New("401 unauthorized"))}

	items := []domain.CuratedItem{curated("bad", 1), curated("good", 2)}
	got := newTestSummarizer(client).Summarize(context.Background(), items)

	if got[0].Status != domain.StatusExcluded {
		t.Fatalf("expected failed-excluded, got %s", got[0].Status)
	}
	if client.calls["bad"] != 1 {
		t.Fatalf("permanent failure must not retry, got %d calls", client.calls["bad"])
	}
	if got[1].Status != domain.StatusSucceeded {
		t.Fatalf("sibling item should still succeed, got %s", got[1].Status)
	}
}

func TestSummarizeQuickHitsSkipModelCalls(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	s := newTestSummarizer(client)
	s.maxModelCalls = 1

	items := []domain.CuratedItem{curated("top", 1), curated("quick", 2)}
	got := s.Summarize(context.Background(), items)

	if got[0].Status != domain.StatusSucceeded {
		t.Fatalf("top story should use the model, got %s", got[0].Status)
	}
	if got[1].Status != domain.StatusFallback {
		t.Fatalf("quick hit should take excerpt path, got %s", got[1].Status)
	}
	if client.calls["quick"] != 0 {
		t.Fatalf("quick hit must not consume model calls, got %d", client.calls["quick"])
	}
}

func TestSummarizeNilClientUsesFallback(t *testing.T) {
	t.Parallel()

	got := newTestSummarizer(nil).Summarize(context.Background(), []domain.CuratedItem{curated("a", 1)})
	if got[0].Status != domain.StatusFallback {
		t.Fatalf("nil client should fall back, got %s", got[0].Status)
	}
}

func TestSummarizePreservesOrder(t *testing.T) {
	t.Parallel()

	items := []domain.CuratedItem{curated("one", 1), curated("two", 2), curated("three", 3)}
	got := newTestSummarizer(newFakeClient()).Summarize(context.Background(), items)

	for i, item := range items {
		if got[i].CanonicalKey != item.CanonicalKey {
			t.Fatalf("order not preserved at %d: %s", i, got[i].CanonicalKey)
		}
	}
}

func TestIntroFallsBackOnFailure(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.introErr = domain.Permanent(errors.New("401"))

	s := newTestSummarizer(client)
	req := ports.IntroRequest{Name: "Ada", Date: "Monday, March 10, 2025", StoryCount: 3}

	got := s.Intro(context.Background(), req)
	if !strings.Contains(got, "Good morning, Ada!") {
		t.Fatalf("expected canned greeting, got %q", got)
	}
	if !strings.Contains(got, "3 stories") {
		t.Fatalf("greeting should mention story count, got %q", got)
	}
}

func TestIntroUsesModelWhenAvailable(t *testing.T) {
	t.Parallel()

	s := newTestSummarizer(newFakeClient())
	got := s.Intro(context.Background(), ports.IntroRequest{Name: "Ada"})
	if got != "Hello there!" {
		t.Fatalf("expected model intro, got %q", got)
	}
}

func TestTruncateToSentence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{
			name:  "short text unchanged",
			text:  "Short enough.",
			limit: 50,
			want:  "Short enough.",
		},
		{
			name:  "cuts at sentence boundary",
			text:  "First sentence. Second sentence goes on and on well past the limit.",
			limit: 30,
			want:  "First sentence.",
		},
		{
			name:  "falls back to word boundary",
			text:  "no sentence boundary here just a very long run of words",
			limit: 20,
			want:  "no sentence…",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateToSentence(tt.text, tt.limit)
			if got != tt.want {
				t.Fatalf("truncateToSentence(%q, %d) = %q, want %q", tt.text, tt.limit, got, tt.want)
			}
		})
	}
}
