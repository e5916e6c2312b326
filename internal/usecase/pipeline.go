// Package usecase orchestrates the digest pipeline: fetch, curate,
// summarize, render, deliver, record. The dispatcher guards per-day
// idempotency; the pipeline runs one recipient end to end.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dailybrief/internal/curator"
	"dailybrief/internal/domain"
	"dailybrief/internal/generator"
	"dailybrief/internal/ports"
	"dailybrief/internal/summarizer"
)

const dateLabelLayout = "Monday, January 2, 2006"

// Pipeline assembles and delivers one recipient's digest.
type Pipeline struct {
	source         ports.ItemSource
	curator        *curator.Curator
	summarizer     *summarizer.Summarizer
	generator      *generator.Generator
	mailer         *Mailer
	digests        ports.DigestStore
	unsubscribeURL string
	location       *time.Location
	logger         *slog.Logger
	now            func() time.Time
}

// NewPipeline wires the pipeline stages together.
func NewPipeline(
	source ports.ItemSource,
	cur *curator.Curator,
	sum *summarizer.Summarizer,
	gen *generator.Generator,
	mailer *Mailer,
	digests ports.DigestStore,
	unsubscribeURL string,
	location *time.Location,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		source:         source,
		curator:        cur,
		summarizer:     sum,
		generator:      gen,
		mailer:         mailer,
		digests:        digests,
		unsubscribeURL: unsubscribeURL,
		location:       location,
		logger:         logger.With("component", "pipeline"),
		now:            time.Now,
	}
}

// Run executes the full pipeline for one recipient and returns the
// finished run record. It never sends twice: the caller holds the per-day
// claim and persists the returned record.
func (p *Pipeline) Run(ctx context.Context, recipient domain.Recipient, day string) domain.RunRecord {
	record := domain.RunRecord{RecipientID: recipient.ID, Day: day}
	log := p.logger.With("recipient", recipient.ID, "day", day)

	items, failures := p.source.FetchAll(ctx)
	for _, f := range failures {
		log.Warn("source fetch failed", "source", f.SourceID, "error", f.Err)
	}
	log.Info("fetch complete", "items", len(items), "failed_sources", len(failures))

	now := p.now()
	curated := p.curator.Curate(items, recipient.Interests, now)
	if len(curated) == 0 {
		log.Info("no items survived curation, skipping delivery")
		record.Outcome = domain.OutcomeSkippedNoItems
		record.CompletedAt = now
		return record
	}

	summarized := p.summarizer.Summarize(ctx, curated)
	kept := make([]domain.SummarizedItem, 0, len(summarized))
	for _, item := range summarized {
		if item.Status == domain.StatusExcluded {
			continue
		}
		kept = append(kept, item)
	}
	if len(kept) == 0 {
		log.Info("every item excluded during summarization, skipping delivery")
		record.Outcome = domain.OutcomeSkippedNoItems
		record.CompletedAt = p.now()
		return record
	}

	dateLabel := now.In(p.loc()).Format(dateLabelLayout)
	categories := make([]string, 0, len(recipient.Interests))
	for _, slug := range recipient.Interests {
		categories = append(categories, domain.CategoryName(slug))
	}
	intro := p.summarizer.Intro(ctx, ports.IntroRequest{
		Name:       recipient.FirstName(),
		Categories: categories,
		StoryCount: len(kept),
		Date:       dateLabel,
	})

	htmlBody, plainBody, err := p.generator.Render(generator.Input{
		RecipientName:  recipient.FirstName(),
		Intro:          intro,
		DateLabel:      dateLabel,
		Items:          kept,
		UnsubscribeURL: p.unsubscribeURL,
	})
	if err != nil {
		return p.failed(record, fmt.Errorf("render digest: %w", err))
	}

	digest := domain.Digest{
		ID:          uuid.NewString(),
		RecipientID: recipient.ID,
		GeneratedAt: now,
		Subject:     generator.Subject(dateLabel),
		Intro:       intro,
		Items:       kept,
		HTMLBody:    htmlBody,
		PlainBody:   plainBody,
	}
	if err := p.digests.SaveDigest(ctx, digest); err != nil {
		return p.failed(record, fmt.Errorf("save digest: %w", err))
	}

	if err := p.mailer.Deliver(ctx, recipient.Email, recipient.Name, digest.Subject, htmlBody, plainBody); err != nil {
		record.DigestID = digest.ID
		return p.failed(record, fmt.Errorf("deliver digest: %w", err))
	}

	log.Info("digest sent", "digest", digest.ID, "items", len(kept))
	record.Outcome = domain.OutcomeSent
	record.CompletedAt = p.now()
	record.DigestID = digest.ID
	return record
}

func (p *Pipeline) failed(record domain.RunRecord, err error) domain.RunRecord {
	p.logger.Error("pipeline run failed",
		"recipient", record.RecipientID, "day", record.Day, "error", err)
	record.Outcome = domain.OutcomeFailed
	record.CompletedAt = p.now()
	record.Detail = err.Error()
	return record
}

func (p *Pipeline) loc() *time.Location {
	if p.location != nil {
		return p.location
	}
	return time.UTC
}
