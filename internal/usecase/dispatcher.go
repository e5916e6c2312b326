package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dailybrief/internal/domain"
	"dailybrief/internal/ports"
)

// ErrRunExists reports that the (recipient, day) key is already claimed
// or finished, so no new run was started.
var ErrRunExists = errors.New("run already exists for recipient and day")

// ErrNotEligible reports a manual trigger for an inactive or unsubscribed
// recipient.
var ErrNotEligible = errors.New("recipient is not eligible for digests")

// Dispatcher owns the per-day run state machine. Exactly one run per
// (recipient, day) makes it past Begin; concurrent triggers lose the
// claim and observe the winner's record instead.
type Dispatcher struct {
	pipeline  *Pipeline
	runs      ports.RunRecordStore
	directory ports.RecipientDirectory
	workers   int
	location  *time.Location
	logger    *slog.Logger
	now       func() time.Time
}

// NewDispatcher wires run bookkeeping around the pipeline.
func NewDispatcher(
	pipeline *Pipeline,
	runs ports.RunRecordStore,
	directory ports.RecipientDirectory,
	workers int,
	location *time.Location,
	logger *slog.Logger,
) *Dispatcher {
	if workers <= 0 {
		workers = 8
	}
	return &Dispatcher{
		pipeline:  pipeline,
		runs:      runs,
		directory: directory,
		workers:   workers,
		location:  location,
		logger:    logger.With("component", "dispatcher"),
		now:       time.Now,
	}
}

// RunBatch runs the pipeline for every eligible recipient for the day
// containing at, fanning out across a bounded worker pool. One
// recipient's failure never affects the others.
func (d *Dispatcher) RunBatch(ctx context.Context, at time.Time) error {
	day := domain.DayKey(at, d.location)
	recipients, err := d.directory.EligibleRecipients(ctx)
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}
	d.logger.Info("batch run starting", "day", day, "recipients", len(recipients))

	sem := make(chan struct{}, d.workers)
	var wg sync.WaitGroup
	for _, recipient := range recipients {
		wg.Add(1)
		go func(recipient domain.Recipient) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if _, err := d.run(ctx, recipient, day, false); err != nil && !errors.Is(err, ErrRunExists) {
				d.logger.Error("batch recipient run failed", "recipient", recipient.ID, "error", err)
			}
		}(recipient)
	}
	wg.Wait()

	d.logger.Info("batch run finished", "day", day)
	return nil
}

// RunOne executes a manual trigger for a single recipient today. With
// force set it replaces any existing record for the day and sends again.
func (d *Dispatcher) RunOne(ctx context.Context, recipientID string, force bool) (domain.RunRecord, error) {
	recipient, err := d.directory.RecipientByID(ctx, recipientID)
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("look up recipient %s: %w", recipientID, err)
	}
	if !recipient.Eligible() {
		return domain.RunRecord{}, ErrNotEligible
	}
	day := domain.DayKey(d.now(), d.location)
	return d.run(ctx, recipient, day, force)
}

// run claims the (recipient, day) key, executes the pipeline while
// holding it, and finalizes the record. The claim is released only on
// bookkeeping failure, never after a terminal outcome.
func (d *Dispatcher) run(ctx context.Context, recipient domain.Recipient, day string, force bool) (domain.RunRecord, error) {
	claimed, existing, err := d.runs.Begin(ctx, recipient.ID, day, force)
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("claim run for %s on %s: %w", recipient.ID, day, err)
	}
	if !claimed {
		record := domain.RunRecord{RecipientID: recipient.ID, Day: day}
		if existing != nil {
			record = *existing
		}
		d.logger.Debug("run already recorded, skipping",
			"recipient", recipient.ID, "day", day, "outcome", record.Outcome)
		return record, ErrRunExists
	}

	record := d.pipeline.Run(ctx, recipient, day)
	if ctx.Err() != nil {
		// Canceled mid-run: free the day instead of recording a bogus
		// outcome so a later trigger can complete it.
		if relErr := d.runs.Release(context.WithoutCancel(ctx), recipient.ID, day); relErr != nil {
			d.logger.Error("release run claim failed",
				"recipient", recipient.ID, "day", day, "error", relErr)
		}
		return record, ctx.Err()
	}
	if err := d.runs.Finalize(ctx, record); err != nil {
		d.logger.Error("finalize run record failed",
			"recipient", recipient.ID, "day", day, "error", err)
		if relErr := d.runs.Release(ctx, recipient.ID, day); relErr != nil {
			d.logger.Error("release run claim failed",
				"recipient", recipient.ID, "day", day, "error", relErr)
		}
		return record, fmt.Errorf("finalize run for %s on %s: %w", recipient.ID, day, err)
	}
	return record, nil
}
