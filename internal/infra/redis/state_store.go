package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-runner/internal/domain"
)

// DefaultKeyPrefix namespaces session records in a shared Redis.
const DefaultKeyPrefix = "quiz:session:"

// StateStore keeps the persisted session record in Redis strings. A
// positive ttl expires abandoned records.
type StateStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewStateStore(client *redis.Client, prefix string, ttl time.Duration) *StateStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &StateStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *StateStore) Put(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.prefix+key, value, s.ttl).Err()
}

func (s *StateStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *StateStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
