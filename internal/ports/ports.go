package ports

import (
	"context"
	"time"

	"dailybrief/internal/domain"
)

// ItemSource pulls normalized content items from all configured sources.
// Per-source failures never abort the batch; partial results are valid.
type ItemSource interface {
	FetchAll(ctx context.Context) ([]domain.ContentItem, []domain.SourceFailure)
}

// IntroRequest carries everything the model needs to write a greeting.
type IntroRequest struct {
	Name       string
	Categories []string
	StoryCount int
	Date       string
}

// SynopsisClient condenses article text via an external language model.
// Errors are classified transient or permanent via domain.ClassOf.
type SynopsisClient interface {
	Summarize(ctx context.Context, item domain.ContentItem) (domain.Synopsis, error)
	Intro(ctx context.Context, req IntroRequest) (string, error)
}

// Message is one outbound email with both representations attached.
type Message struct {
	From     string
	FromName string
	To       string
	ToName   string
	Subject  string
	HTML     string
	Plain    string
}

// MailTransport delivers a rendered digest over an authenticated channel.
type MailTransport interface {
	Send(ctx context.Context, msg Message) error
}

// DigestStore persists rendered digests for history and preview.
type DigestStore interface {
	SaveDigest(ctx context.Context, digest domain.Digest) error
	DigestByID(ctx context.Context, id string) (domain.Digest, error)
	DigestsByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Digest, error)
}

// RunRecordStore guards per-(recipient, day) idempotency. Begin atomically
// claims the key: it reports false plus the existing record when another
// run already holds or finished it. With force set the claim always
// succeeds, replacing any prior record (manual triggers only).
type RunRecordStore interface {
	Begin(ctx context.Context, recipientID, day string, force bool) (bool, *domain.RunRecord, error)
	Finalize(ctx context.Context, record domain.RunRecord) error
	Release(ctx context.Context, recipientID, day string) error
	RecordFor(ctx context.Context, recipientID, day string) (*domain.RunRecord, error)
}

// RecipientDirectory exposes the subscriber base owned by the account
// system. Read-only from the pipeline's point of view.
type RecipientDirectory interface {
	EligibleRecipients(ctx context.Context) ([]domain.Recipient, error)
	RecipientByID(ctx context.Context, id string) (domain.Recipient, error)
}

// Trigger controls when batch runs execute.
type Trigger interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
