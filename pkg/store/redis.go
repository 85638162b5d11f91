package store

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/pixelmill/pixelmill/pkg/errors"
	"github.com/pixelmill/pixelmill/pkg/palette"
)

// redisKey is the hash holding one field per palette id.
const redisKey = "pixelmill:palettes"

// RedisStore keeps palettes in a Redis hash so multiple server instances
// share one custom palette set.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore returns a store backed by the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisStoreURL connects to a Redis URL (redis://host:port/db).
func NewRedisStoreURL(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing redis url")
	}
	return NewRedisStore(redis.NewClient(opts)), nil
}

// Ping verifies connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "redis ping")
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context) (map[string]palette.Record, error) {
	fields, err := s.client.HGetAll(ctx, redisKey).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "loading palettes from redis")
	}
	records := make(map[string]palette.Record, len(fields))
	for id, raw := range fields {
		var rec palette.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			// A corrupt field should not take down the whole set.
			continue
		}
		records[id] = rec
	}
	return records, nil
}

// Save implements Store. The hash is replaced in one pipeline so readers
// never observe a half-written set.
func (s *RedisStore) Save(ctx context.Context, records map[string]palette.Record) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, redisKey)
	for id, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encoding palette %q", id)
		}
		pipe.HSet(ctx, redisKey, id, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "saving palettes to redis")
	}
	return nil
}
