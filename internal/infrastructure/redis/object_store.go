package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"auction-house/internal/domain"

	"github.com/go-redis/redis/v8"
)

// compareAndPutScript writes a record only if the version stored next to it
// matches the caller's expectation, then bumps that version.
//
// KEYS[1]: category hash, KEYS[2]: category version hash
// ARGV[1]: record key, ARGV[2]: expected version, ARGV[3]: encoded record
var compareAndPutScript = redis.NewScript(`
	local current = tonumber(redis.call('HGET', KEYS[2], ARGV[1]) or '0')
	if current ~= tonumber(ARGV[2]) then
		return {0, current}
	end

	redis.call('HSET', KEYS[1], ARGV[1], ARGV[3])
	redis.call('HINCRBY', KEYS[2], ARGV[1], 1)
	return {1, current + 1}
`)

// RedisObjectStore maps each category onto one Redis hash: hash field = record
// key, value = JSON encoded record.
type RedisObjectStore struct {
	client *redis.Client
}

func NewRedisObjectStore(client *redis.Client) *RedisObjectStore {
	return &RedisObjectStore{client: client}
}

func versionKey(category string) string {
	return fmt.Sprintf("%s:version", category)
}

func unavailable(op, category string, err error) error {
	return fmt.Errorf("%w: redis %s %s: %v", domain.ErrStoreUnavailable, op, category, err)
}

func (s *RedisObjectStore) Get(ctx context.Context, category, key string) (domain.Record, bool, error) {
	data, err := s.client.HGet(ctx, category, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, unavailable("HGET", category, err)
	}

	record, err := decode(category, key, data)
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}

func (s *RedisObjectStore) GetAll(ctx context.Context, category string, filter domain.Predicate) ([]domain.Record, error) {
	values, err := s.client.HGetAll(ctx, category).Result()
	if err != nil {
		return nil, unavailable("HGETALL", category, err)
	}

	records := make([]domain.Record, 0, len(values))
	for key, data := range values {
		record, err := decode(category, key, data)
		if err != nil {
			return nil, err
		}
		if filter == nil || filter(record) {
			records = append(records, record)
		}
	}
	return records, nil
}

func (s *RedisObjectStore) Put(ctx context.Context, category, key string, record domain.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", category, key, err)
	}

	if err := s.client.HSet(ctx, category, key, string(data)).Err(); err != nil {
		return unavailable("HSET", category, err)
	}
	return nil
}

func (s *RedisObjectStore) CompareAndPut(ctx context.Context, category, key string, expected int64, record domain.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", category, key, err)
	}

	result, err := compareAndPutScript.Run(ctx, s.client,
		[]string{category, versionKey(category)},
		key, expected, string(data)).Result()
	if err != nil {
		return unavailable("EVAL", category, err)
	}

	resultSlice, ok := result.([]interface{})
	if !ok || len(resultSlice) != 2 {
		return fmt.Errorf("%w: unexpected script result %v", domain.ErrStoreUnavailable, result)
	}
	if resultSlice[0].(int64) != 1 {
		return fmt.Errorf("%w: %s/%s at version %d, expected %d",
			domain.ErrVersionConflict, category, key, resultSlice[1].(int64), expected)
	}
	return nil
}

func (s *RedisObjectStore) Delete(ctx context.Context, category, key string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, category, key)
		pipe.HDel(ctx, versionKey(category), key)
		return nil
	})
	if err != nil {
		return unavailable("HDEL", category, err)
	}
	return nil
}

// ClearAll flushes the configured database only.
func (s *RedisObjectStore) ClearAll(ctx context.Context) error {
	if err := s.client.FlushDB(ctx).Err(); err != nil {
		return unavailable("FLUSHDB", "*", err)
	}
	return nil
}

func decode(category, key, data string) (domain.Record, error) {
	var record domain.Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("%w: %s/%s is not a valid record: %v", domain.ErrIntegrity, category, key, err)
	}
	return record, nil
}
