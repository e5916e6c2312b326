package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"dailybrief/internal/domain"
	"dailybrief/internal/ports"
)

// ErrNotFound reports a missing row regardless of backend.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS recipients (
    id         TEXT PRIMARY KEY,
    email      TEXT NOT NULL UNIQUE,
    name       TEXT NOT NULL DEFAULT '',
    active     BOOLEAN NOT NULL DEFAULT TRUE,
    subscribed BOOLEAN NOT NULL DEFAULT TRUE,
    interests  JSONB NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS digests (
    id           TEXT PRIMARY KEY,
    recipient_id TEXT NOT NULL REFERENCES recipients (id),
    generated_at TIMESTAMPTZ NOT NULL,
    subject      TEXT NOT NULL,
    intro        TEXT NOT NULL DEFAULT '',
    items        JSONB NOT NULL DEFAULT '[]',
    html_body    TEXT NOT NULL,
    plain_body   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS digests_recipient_idx
    ON digests (recipient_id, generated_at DESC);

CREATE TABLE IF NOT EXISTS run_records (
    recipient_id TEXT NOT NULL,
    day          TEXT NOT NULL,
    outcome      TEXT NOT NULL,
    completed_at TIMESTAMPTZ,
    digest_id    TEXT NOT NULL DEFAULT '',
    detail       TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (recipient_id, day)
);
`

// Postgres backs every store interface with one connection pool. The
// run_records primary key is the idempotency guarantee: claiming a day is
// a single conflict-aware insert.
type Postgres struct {
	db *sql.DB
}

var (
	_ ports.DigestStore        = (*Postgres)(nil)
	_ ports.RunRecordStore     = (*Postgres)(nil)
	_ ports.RecipientDirectory = (*Postgres)(nil)
)

// NewPostgres opens the pool, verifies connectivity, and ensures the
// schema exists.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) EligibleRecipients(ctx context.Context) ([]domain.Recipient, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, email, name, active, subscribed, interests
		FROM recipients
		WHERE active AND subscribed
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query recipients: %w", err)
	}
	defer rows.Close()

	var out []domain.Recipient
	for rows.Next() {
		r, err := scanRecipient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) RecipientByID(ctx context.Context, id string) (domain.Recipient, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, email, name, active, subscribed, interests
		FROM recipients
		WHERE id = $1`, id)
	r, err := scanRecipient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Recipient{}, fmt.Errorf("recipient %s: %w", id, ErrNotFound)
	}
	return r, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipient(row rowScanner) (domain.Recipient, error) {
	var r domain.Recipient
	var interests []byte
	if err := row.Scan(&r.ID, &r.Email, &r.Name, &r.Active, &r.Subscribed, &interests); err != nil {
		return domain.Recipient{}, err
	}
	if err := json.Unmarshal(interests, &r.Interests); err != nil {
		return domain.Recipient{}, fmt.Errorf("decode interests for %s: %w", r.ID, err)
	}
	return r, nil
}

func (p *Postgres) SaveDigest(ctx context.Context, digest domain.Digest) error {
	items, err := json.Marshal(digest.Items)
	if err != nil {
		return fmt.Errorf("encode digest items: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO digests (id, recipient_id, generated_at, subject, intro, items, html_body, plain_body)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		digest.ID, digest.RecipientID, digest.GeneratedAt, digest.Subject,
		digest.Intro, items, digest.HTMLBody, digest.PlainBody)
	if err != nil {
		return fmt.Errorf("insert digest %s: %w", digest.ID, err)
	}
	return nil
}

func (p *Postgres) DigestByID(ctx context.Context, id string) (domain.Digest, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, recipient_id, generated_at, subject, intro, items, html_body, plain_body
		FROM digests
		WHERE id = $1`, id)
	d, err := scanDigest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Digest{}, fmt.Errorf("digest %s: %w", id, ErrNotFound)
	}
	return d, err
}

func (p *Postgres) DigestsByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Digest, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, recipient_id, generated_at, subject, intro, items, html_body, plain_body
		FROM digests
		WHERE recipient_id = $1
		ORDER BY generated_at DESC
		LIMIT $2`, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("query digests for %s: %w", recipientID, err)
	}
	defer rows.Close()

	var out []domain.Digest
	for rows.Next() {
		d, err := scanDigest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDigest(row rowScanner) (domain.Digest, error) {
	var d domain.Digest
	var items []byte
	err := row.Scan(&d.ID, &d.RecipientID, &d.GeneratedAt, &d.Subject,
		&d.Intro, &items, &d.HTMLBody, &d.PlainBody)
	if err != nil {
		return domain.Digest{}, err
	}
	if err := json.Unmarshal(items, &d.Items); err != nil {
		return domain.Digest{}, fmt.Errorf("decode items for digest %s: %w", d.ID, err)
	}
	return d, nil
}

// Begin claims (recipient, day) with a conflict-aware insert. Losing the
// insert means another run holds or finished the day; the existing record
// comes back with the refusal. Force replaces whatever is there.
func (p *Postgres) Begin(ctx context.Context, recipientID, day string, force bool) (bool, *domain.RunRecord, error) {
	if force {
		_, err := p.db.ExecContext(ctx, `
			INSERT INTO run_records (recipient_id, day, outcome)
			VALUES ($1, $2, $3)
			ON CONFLICT (recipient_id, day) DO UPDATE
			SET outcome = EXCLUDED.outcome, completed_at = NULL, digest_id = '', detail = ''`,
			recipientID, day, domain.OutcomeInProgress)
		if err != nil {
			return false, nil, fmt.Errorf("force claim run %s/%s: %w", recipientID, day, err)
		}
		return true, nil, nil
	}

	res, err := p.db.ExecContext(ctx, `
		INSERT INTO run_records (recipient_id, day, outcome)
		VALUES ($1, $2, $3)
		ON CONFLICT (recipient_id, day) DO NOTHING`,
		recipientID, day, domain.OutcomeInProgress)
	if err != nil {
		return false, nil, fmt.Errorf("claim run %s/%s: %w", recipientID, day, err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, nil, fmt.Errorf("claim run %s/%s: %w", recipientID, day, err)
	}
	if inserted > 0 {
		return true, nil, nil
	}

	existing, err := p.RecordFor(ctx, recipientID, day)
	if err != nil {
		return false, nil, err
	}
	return false, existing, nil
}

func (p *Postgres) Finalize(ctx context.Context, record domain.RunRecord) error {
	if !record.Outcome.Terminal() {
		return fmt.Errorf("finalize with non-terminal outcome %q", record.Outcome)
	}
	_, err := p.db.ExecContext(ctx, `
		UPDATE run_records
		SET outcome = $3, completed_at = $4, digest_id = $5, detail = $6
		WHERE recipient_id = $1 AND day = $2`,
		record.RecipientID, record.Day, record.Outcome,
		record.CompletedAt, record.DigestID, record.Detail)
	if err != nil {
		return fmt.Errorf("finalize run %s/%s: %w", record.RecipientID, record.Day, err)
	}
	return nil
}

func (p *Postgres) Release(ctx context.Context, recipientID, day string) error {
	_, err := p.db.ExecContext(ctx, `
		DELETE FROM run_records WHERE recipient_id = $1 AND day = $2`,
		recipientID, day)
	if err != nil {
		return fmt.Errorf("release run %s/%s: %w", recipientID, day, err)
	}
	return nil
}

func (p *Postgres) RecordFor(ctx context.Context, recipientID, day string) (*domain.RunRecord, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT recipient_id, day, outcome, completed_at, digest_id, detail
		FROM run_records
		WHERE recipient_id = $1 AND day = $2`,
		recipientID, day)

	var record domain.RunRecord
	var completedAt sql.NullTime
	err := row.Scan(&record.RecipientID, &record.Day, &record.Outcome,
		&completedAt, &record.DigestID, &record.Detail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read run %s/%s: %w", recipientID, day, err)
	}
	if completedAt.Valid {
		record.CompletedAt = completedAt.Time
	}
	return &record, nil
}
