package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dailybrief/internal/domain"
	"dailybrief/internal/ports"
)

// Run records only need to survive long enough to block duplicate sends
// for the day; two days covers clock skew around midnight.
const runRecordTTL = 48 * time.Hour

// Redis keeps run records as JSON values claimed with SETNX. It covers
// only the idempotency surface; digests still need a durable store.
type Redis struct {
	client *redis.Client
}

var _ ports.RunRecordStore = (*Redis)(nil)

// NewRedis parses the URL, connects, and verifies the server responds.
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client}, nil
}

// Close shuts the connection pool down.
func (r *Redis) Close() error {
	return r.client.Close()
}

func redisRunKey(recipientID, day string) string {
	return "dailybrief:run:" + recipientID + ":" + day
}

// Begin claims the key with SETNX. A false reply means another run holds
// or finished the day; the stored record rides back with the refusal.
func (r *Redis) Begin(ctx context.Context, recipientID, day string, force bool) (bool, *domain.RunRecord, error) {
	claim := domain.RunRecord{
		RecipientID: recipientID,
		Day:         day,
		Outcome:     domain.OutcomeInProgress,
	}
	payload, err := json.Marshal(claim)
	if err != nil {
		return false, nil, fmt.Errorf("encode run claim: %w", err)
	}
	key := redisRunKey(recipientID, day)

	if force {
		if err := r.client.Set(ctx, key, payload, runRecordTTL).Err(); err != nil {
			return false, nil, fmt.Errorf("force claim run %s/%s: %w", recipientID, day, err)
		}
		return true, nil, nil
	}

	claimed, err := r.client.SetNX(ctx, key, payload, runRecordTTL).Result()
	if err != nil {
		return false, nil, fmt.Errorf("claim run %s/%s: %w", recipientID, day, err)
	}
	if claimed {
		return true, nil, nil
	}

	existing, err := r.RecordFor(ctx, recipientID, day)
	if err != nil {
		return false, nil, err
	}
	return false, existing, nil
}

func (r *Redis) Finalize(ctx context.Context, record domain.RunRecord) error {
	if !record.Outcome.Terminal() {
		return fmt.Errorf("finalize with non-terminal outcome %q", record.Outcome)
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode run record: %w", err)
	}
	key := redisRunKey(record.RecipientID, record.Day)
	if err := r.client.Set(ctx, key, payload, runRecordTTL).Err(); err != nil {
		return fmt.Errorf("finalize run %s/%s: %w", record.RecipientID, record.Day, err)
	}
	return nil
}

func (r *Redis) Release(ctx context.Context, recipientID, day string) error {
	if err := r.client.Del(ctx, redisRunKey(recipientID, day)).Err(); err != nil {
		return fmt.Errorf("release run %s/%s: %w", recipientID, day, err)
	}
	return nil
}

func (r *Redis) RecordFor(ctx context.Context, recipientID, day string) (*domain.RunRecord, error) {
	raw, err := r.client.Get(ctx, redisRunKey(recipientID, day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read run %s/%s: %w", recipientID, day, err)
	}
	var record domain.RunRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode run %s/%s: %w", recipientID, day, err)
	}
	return &record, nil
}
