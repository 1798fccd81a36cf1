// Package redis provides a Redis-backed RecordStore.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ttpunch/blog/store"
)

// RedisRecordStore implements store.RecordStore on a Redis hash per record.
// The status lives in its own hash field so TransitionStatus can be a single
// atomic Lua compare-and-set.
type RedisRecordStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ store.RecordStore = (*RedisRecordStore)(nil)

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "blog:"
	TTL      time.Duration // Expiration for records, default 0 (no expiration)
}

// transitionScript compares the status field and swaps it atomically.
var transitionScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'status')
if current == false then
	return -1
end
if current ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], 'status', ARGV[2])
return 1
`)

// NewRedisRecordStore creates a new Redis record store.
func NewRedisRecordStore(opts RedisOptions) *RedisRecordStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "blog:"
	}

	return &RedisRecordStore{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

// Close closes the underlying client.
func (s *RedisRecordStore) Close() error {
	return s.client.Close()
}

func (s *RedisRecordStore) recordKey(id string) string {
	return fmt.Sprintf("%srecord:%s", s.prefix, id)
}

func (s *RedisRecordStore) indexKey() string {
	return s.prefix + "records"
}

// Save upserts the record.
func (s *RedisRecordStore) Save(ctx context.Context, record *store.Record) error {
	clone := *record
	now := time.Now()
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	clone.UpdatedAt = now

	data, err := json.Marshal(&clone)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	key := s.recordKey(record.ID)
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, "data", data, "status", string(clone.Status))
	pipe.SAdd(ctx, s.indexKey(), record.ID)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
		pipe.Expire(ctx, s.indexKey(), s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save record to redis: %w", err)
	}
	return nil
}

// Load retrieves a record by id.
func (s *RedisRecordStore) Load(ctx context.Context, id string) (*store.Record, error) {
	values, err := s.client.HMGet(ctx, s.recordKey(id), "data", "status").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load record from redis: %w", err)
	}

	data, ok := values[0].(string)
	if !ok {
		return nil, store.ErrNotFound
	}

	var record store.Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	// The status field is authoritative: TransitionStatus updates it without
	// rewriting the data blob.
	if status, ok := values[1].(string); ok && status != "" {
		record.Status = store.Status(status)
	}

	return &record, nil
}

// List returns all records, newest first.
func (s *RedisRecordStore) List(ctx context.Context) ([]*store.Record, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	records := make([]*store.Record, 0, len(ids))
	for _, id := range ids {
		record, err := s.Load(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			// Expired record still in the index.
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Delete removes a record.
func (s *RedisRecordStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.recordKey(id))
	pipe.SRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// TransitionStatus moves the record between statuses atomically.
func (s *RedisRecordStore) TransitionStatus(ctx context.Context, id string, from, to store.Status) error {
	result, err := transitionScript.Run(ctx, s.client, []string{s.recordKey(id)}, string(from), string(to)).Int()
	if err != nil {
		return fmt.Errorf("failed to transition status: %w", err)
	}
	switch result {
	case -1:
		return store.ErrNotFound
	case 0:
		return store.ErrStatusConflict
	default:
		return nil
	}
}
