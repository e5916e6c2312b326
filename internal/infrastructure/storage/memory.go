// Package storage provides the persistence adapters: Postgres for
// durable deployments, Redis for the run-record fast path, and an
// in-memory variant for tests and local development.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"dailybrief/internal/domain"
	"dailybrief/internal/ports"
)

// Memory keeps digests, run records, and recipients in process memory.
// All methods are safe for concurrent use.
type Memory struct {
	mu         sync.Mutex
	digests    map[string]domain.Digest
	runs       map[string]domain.RunRecord
	recipients map[string]domain.Recipient
	order      []string
}

var (
	_ ports.DigestStore        = (*Memory)(nil)
	_ ports.RunRecordStore     = (*Memory)(nil)
	_ ports.RecipientDirectory = (*Memory)(nil)
)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		digests:    map[string]domain.Digest{},
		runs:       map[string]domain.RunRecord{},
		recipients: map[string]domain.Recipient{},
	}
}

func runKey(recipientID, day string) string {
	return recipientID + "|" + day
}

// AddRecipient seeds a recipient. Test and local-development helper.
func (m *Memory) AddRecipient(r domain.Recipient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recipients[r.ID]; !ok {
		m.order = append(m.order, r.ID)
	}
	m.recipients[r.ID] = r
}

func (m *Memory) EligibleRecipients(ctx context.Context) ([]domain.Recipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Recipient, 0, len(m.order))
	for _, id := range m.order {
		if r := m.recipients[id]; r.Eligible() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) RecipientByID(ctx context.Context, id string) (domain.Recipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recipients[id]
	if !ok {
		return domain.Recipient{}, fmt.Errorf("recipient %s: %w", id, ErrNotFound)
	}
	return r, nil
}

func (m *Memory) SaveDigest(ctx context.Context, digest domain.Digest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.digests[digest.ID] = digest
	return nil
}

func (m *Memory) DigestByID(ctx context.Context, id string) (domain.Digest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.digests[id]
	if !ok {
		return domain.Digest{}, fmt.Errorf("digest %s: %w", id, ErrNotFound)
	}
	return d, nil
}

func (m *Memory) DigestsByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Digest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Digest, 0)
	for _, d := range m.digests {
		if d.RecipientID == recipientID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Begin claims the (recipient, day) key. The claim is a stored
// in-progress record; a second caller sees it and loses.
func (m *Memory) Begin(ctx context.Context, recipientID, day string, force bool) (bool, *domain.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := runKey(recipientID, day)
	if existing, ok := m.runs[key]; ok && !force {
		copied := existing
		return false, &copied, nil
	}
	m.runs[key] = domain.RunRecord{
		RecipientID: recipientID,
		Day:         day,
		Outcome:     domain.OutcomeInProgress,
	}
	return true, nil, nil
}

func (m *Memory) Finalize(ctx context.Context, record domain.RunRecord) error {
	if !record.Outcome.Terminal() {
		return fmt.Errorf("finalize with non-terminal outcome %q", record.Outcome)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[runKey(record.RecipientID, record.Day)] = record
	return nil
}

func (m *Memory) Release(ctx context.Context, recipientID, day string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, runKey(recipientID, day))
	return nil
}

func (m *Memory) RecordFor(ctx context.Context, recipientID, day string) (*domain.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.runs[runKey(recipientID, day)]
	if !ok {
		return nil, nil
	}
	copied := record
	return &copied, nil
}
