package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dailybrief/internal/domain"
	"dailybrief/internal/ports"
	"dailybrief/internal/source"
)

// Fetcher pulls all configured sources concurrently and returns the union
// of successfully parsed items plus per-source failures. A single source's
// failure never aborts the batch; there is no retry at this layer.
type Fetcher struct {
	registry    *source.Registry
	descriptors []source.Descriptor
	timeout     time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

var _ ports.ItemSource = (*Fetcher)(nil)

// NewFetcher wires the strategy registry with config-defined sources.
func NewFetcher(reg *source.Registry, descriptors []source.Descriptor, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		registry:    reg,
		descriptors: descriptors,
		timeout:     timeout,
		logger:      logger,
		now:         time.Now,
	}
}

// FetchAll executes every source strategy concurrently under a per-source
// timeout. Result ordering follows descriptor order so downstream
// processing stays reproducible.
func (f *Fetcher) FetchAll(ctx context.Context) ([]domain.ContentItem, []domain.SourceFailure) {
	now := f.now().UTC()

	type result struct {
		items []domain.ContentItem
		err   error
	}

	results := make([]result, len(f.descriptors))
	var wg sync.WaitGroup
	for i, desc := range f.descriptors {
		wg.Add(1)
		go func(i int, desc source.Descriptor) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
			defer cancel()

			strategy, err := f.registry.Resolve(desc.Kind)
			if err != nil {
				results[i] = result{err: err}
				return
			}

			items, err := strategy.Fetch(fetchCtx, desc, now)
			if err != nil {
				results[i] = result{err: fmt.Errorf("source %s: %w", desc.ID, err)}
				return
			}
			results[i] = result{items: items}
		}(i, desc)
	}
	wg.Wait()

	var (
		aggregated []domain.ContentItem
		failures   []domain.SourceFailure
	)
	for i, res := range results {
		if res.err != nil {
			failures = append(failures, domain.SourceFailure{SourceID: f.descriptors[i].ID, Err: res.err})
			f.warn("source fetch failed", "source", f.descriptors[i].ID, "error", res.err)
			continue
		}
		aggregated = append(aggregated, res.items...)
	}

	f.debug("fetch complete", "sources", len(f.descriptors), "items", len(aggregated), "failures", len(failures))
	return aggregated, failures
}

func (f *Fetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

func (f *Fetcher) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}
