package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// tokenKey holds the single credential record. No TTL: expiry arithmetic
// belongs to the manager, not the store.
const tokenKey = "whoop:token"

// RedisStore keeps the credential record in Redis. Useful when the bridge
// runs somewhere without a persistent filesystem.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed token store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Load reads the stored record; a missing key means "not connected".
func (s *RedisStore) Load(ctx context.Context) (*Record, error) {
	data, err := s.client.Get(ctx, tokenKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading token record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		// Same policy as the file store: an unreadable record is removed
		// rather than trusted.
		if delErr := s.client.Del(ctx, tokenKey).Err(); delErr != nil {
			return nil, fmt.Errorf("removing corrupt token record: %w", delErr)
		}
		return nil, nil
	}
	return &rec, nil
}

// Save overwrites the stored record.
func (s *RedisStore) Save(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling token record: %w", err)
	}
	if err := s.client.Set(ctx, tokenKey, data, 0).Err(); err != nil {
		return fmt.Errorf("storing token record: %w", err)
	}
	return nil
}

// Delete removes the stored record.
func (s *RedisStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, tokenKey).Err(); err != nil {
		return fmt.Errorf("deleting token record: %w", err)
	}
	return nil
}

// CheckHealth verifies Redis connectivity.
func (s *RedisStore) CheckHealth(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
