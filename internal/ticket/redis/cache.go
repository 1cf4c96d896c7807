package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/office-ticketing/internal/ticket"
	"github.com/redis/go-redis/v9"
)

const ticketsKey = "tickets"

// CacheStore keeps the ticket cache entry in Redis so it survives between
// CLI invocations. The key expires with the freshness window.
type CacheStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewCacheStore(client *redis.Client, prefix string, ttl time.Duration) *CacheStore {
	return &CacheStore{
		client: client,
		key:    prefix + ticketsKey,
		ttl:    ttl,
	}
}

var _ ticket.CacheStore = (*CacheStore)(nil)

func (s *CacheStore) Get(ctx context.Context) (*ticket.CacheEntry, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read ticket cache: %w", err)
	}

	var entry ticket.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode ticket cache: %w", err)
	}
	return &entry, nil
}

func (s *CacheStore) Set(ctx context.Context, entry *ticket.CacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode ticket cache: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write ticket cache: %w", err)
	}
	return nil
}

func (s *CacheStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear ticket cache: %w", err)
	}
	return nil
}

// Ping checks the connection at start-up.
func (s *CacheStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
