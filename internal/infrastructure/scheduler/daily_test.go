package scheduler

import (
	"context"
	"testing"
	"time"

	"dailybrief/internal/logging"
)

func TestNextFireLaterToday(t *testing.T) {
	t.Parallel()

	trigger, err := NewDaily(7, 30, time.UTC, logging.New("error"))
	if err != nil {
		t.Fatalf("NewDaily: %v", err)
	}

	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	next := trigger.nextFire(now)
	want := time.Date(2025, 3, 10, 7, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("nextFire = %v, want %v", next, want)
	}
}

func TestNextFireRollsToTomorrow(t *testing.T) {
	t.Parallel()

	trigger, err := NewDaily(7, 30, time.UTC, logging.New("error"))
	if err != nil {
		t.Fatalf("NewDaily: %v", err)
	}

	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	next := trigger.nextFire(now)
	want := time.Date(2025, 3, 11, 7, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("nextFire = %v, want %v", next, want)
	}
}

func TestNextFireExactlyAtBoundaryRolls(t *testing.T) {
	t.Parallel()

	trigger, err := NewDaily(7, 30, time.UTC, logging.New("error"))
	if err != nil {
		t.Fatalf("NewDaily: %v", err)
	}

	now := time.Date(2025, 3, 10, 7, 30, 0, 0, time.UTC)
	next := trigger.nextFire(now)
	if !next.After(now) {
		t.Fatalf("nextFire at the boundary must move forward, got %v", next)
	}
	if next.Day() != 11 {
		t.Fatalf("expected tomorrow, got %v", next)
	}
}

func TestNewDailyRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	logger := logging.New("error")
	if _, err := NewDaily(24, 0, time.UTC, logger); err == nil {
		t.Fatal("expected error for hour 24")
	}
	if _, err := NewDaily(7, 60, time.UTC, logger); err == nil {
		t.Fatal("expected error for minute 60")
	}
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	trigger, err := NewDaily(7, 0, time.UTC, logging.New("error"))
	if err != nil {
		t.Fatalf("NewDaily: %v", err)
	}

	if err := trigger.Start(context.Background(), func(time.Time) {}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := trigger.Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatal("second Start should fail")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := trigger.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
