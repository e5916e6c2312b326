package domain

import "time"

// Digest is the final rendered newsletter for one recipient on one run.
// It is the only long-lived pipeline artifact besides RunRecord.
type Digest struct {
	ID          string
	RecipientID string
	GeneratedAt time.Time
	Subject     string
	Intro       string
	Items       []SummarizedItem
	HTMLBody    string
	PlainBody   string
}

// RunOutcome is the terminal state of one recipient's run on one day.
type RunOutcome string

const (
	OutcomeInProgress     RunOutcome = "in-progress"
	OutcomeSent           RunOutcome = "sent"
	OutcomeSkippedNoItems RunOutcome = "skipped-no-items"
	OutcomeFailed         RunOutcome = "failed"
)

// Terminal reports whether the outcome ends the per-day state machine.
func (o RunOutcome) Terminal() bool {
	return o == OutcomeSent || o == OutcomeSkippedNoItems || o == OutcomeFailed
}

// RunRecord is the idempotency marker for one recipient's pipeline
// execution on one calendar day in the scheduling timezone.
type RunRecord struct {
	RecipientID string
	Day         string
	Outcome     RunOutcome
	CompletedAt time.Time
	DigestID    string
	Detail      string
}

// DayKey renders the calendar-day idempotency key in the given location.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02")
}
