package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"tshirt-orders/internal/domain"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "schedule:"

// CachedRepo is a read-through Redis cache in front of another Repository.
// Deadline entries are read on every gate check, so even a short TTL keeps
// the hot path off Postgres. Cache failures fall back to the inner repo.
type CachedRepo struct {
	inner  Repository
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

func NewCached(inner Repository, client *redis.Client, ttl time.Duration, logger *log.Logger) *CachedRepo {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedRepo{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (r *CachedRepo) GetByTitle(ctx context.Context, title string) (*domain.DeadlineEntry, error) {
	key := cacheKeyPrefix + title

	data, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		var entry domain.DeadlineEntry
		if jsonErr := json.Unmarshal(data, &entry); jsonErr == nil {
			return &entry, nil
		}
		// Corrupt payload: drop it and fall through to the inner repo.
		_ = r.client.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Printf("schedule cache get %q: %v", title, err)
	}

	entry, err := r.inner.GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}

	if payload, jsonErr := json.Marshal(entry); jsonErr == nil {
		if setErr := r.client.Set(ctx, key, payload, r.ttl).Err(); setErr != nil {
			r.logger.Printf("schedule cache set %q: %v", title, setErr)
		}
	}
	return entry, nil
}
