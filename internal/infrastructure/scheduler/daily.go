// Package scheduler fires the batch job once per day at a fixed local
// wall-clock time.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dailybrief/internal/ports"
)

// DailyTrigger invokes the job at HH:MM in the configured timezone,
// every day, until stopped.
type DailyTrigger struct {
	hour     int
	minute   int
	location *time.Location
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

var _ ports.Trigger = (*DailyTrigger)(nil)

// NewDaily validates the wall-clock time and builds the trigger.
func NewDaily(hour, minute int, location *time.Location, logger *slog.Logger) (*DailyTrigger, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("scheduler hour %d out of range", hour)
	}
	if minute < 0 || minute > 59 {
		return nil, fmt.Errorf("scheduler minute %d out of range", minute)
	}
	if location == nil {
		location = time.UTC
	}
	return &DailyTrigger{
		hour:     hour,
		minute:   minute,
		location: location,
		logger:   logger.With("component", "scheduler"),
	}, nil
}

// Start launches the timer loop. The job runs synchronously inside the
// loop, so a slow batch delays the next day's check rather than stacking
// concurrent batches.
func (t *DailyTrigger) Start(ctx context.Context, job func(time.Time)) error {
	if t.done != nil {
		return fmt.Errorf("scheduler already started")
	}
	ctx, t.cancel = context.WithCancel(ctx)
	t.done = make(chan struct{})

	go t.loop(ctx, job)
	t.logger.Info("scheduler started",
		"time", fmt.Sprintf("%02d:%02d", t.hour, t.minute),
		"timezone", t.location.String())
	return nil
}

// Stop halts the loop and waits for a running job to return.
func (t *DailyTrigger) Stop(ctx context.Context) error {
	if t.cancel == nil {
		return nil
	}
	t.cancel()
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *DailyTrigger) loop(ctx context.Context, job func(time.Time)) {
	defer close(t.done)
	for {
		now := time.Now().In(t.location)
		next := t.nextFire(now)
		t.logger.Info("next run scheduled", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case fired := <-timer.C:
			job(fired.In(t.location))
		}
	}
}

// nextFire returns today's HH:MM if still ahead, otherwise tomorrow's.
func (t *DailyTrigger) nextFire(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), t.hour, t.minute, 0, 0, t.location)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
