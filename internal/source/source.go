package source

import (
	"context"
	"fmt"
	"time"

	"dailybrief/internal/config"
	"dailybrief/internal/domain"
)

// Descriptor carries all parameters required to pull one source endpoint.
type Descriptor struct {
	ID       string
	Kind     domain.SourceKind
	URL      string
	Category string
}

// FromConfig converts configured sources into descriptors, skipping
// entries with an unknown kind.
func FromConfig(sources []config.SourceConfig) []Descriptor {
	descriptors := make([]Descriptor, 0, len(sources))
	for _, src := range sources {
		kind := domain.SourceKind(src.Kind)
		if kind != domain.KindFeed && kind != domain.KindHeadlineAPI {
			continue
		}
		descriptors = append(descriptors, Descriptor{
			ID:       src.ID,
			Kind:     kind,
			URL:      src.URL,
			Category: src.Category,
		})
	}
	return descriptors
}

// Strategy fetches and parses one source endpoint of a single kind.
type Strategy interface {
	Kind() domain.SourceKind
	Fetch(ctx context.Context, desc Descriptor, now time.Time) ([]domain.ContentItem, error)
}

// Registry keeps a mapping from source kinds to their strategies.
type Registry struct {
	strategies map[domain.SourceKind]Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[domain.SourceKind]Strategy{}}
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[domain.SourceKind]Strategy{}
	}
	r.strategies[strategy.Kind()] = strategy
}

// Resolve returns a strategy by kind or an error if it is absent.
func (r *Registry) Resolve(kind domain.SourceKind) (Strategy, error) {
	if strategy, ok := r.strategies[kind]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("source kind %s is not registered", kind)
}
