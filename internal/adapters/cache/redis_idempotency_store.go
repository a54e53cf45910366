package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/domain"
	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/ports"
)

const idempotencyKeyPrefix = "inventory:idem:"

// RedisIdempotencyStore keeps request idempotency records as Redis hashes
// with a TTL. Reserve is first-writer-wins via HSETNX, so two deliveries of
// the same key cannot both proceed past the reservation step.
type RedisIdempotencyStore struct {
	client *redis.Client
}

func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string, _ time.Time) (*ports.IdempotencyRecord, error) {
	data, err := s.client.HGetAll(ctx, idempotencyKeyPrefix+key).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	rec := &ports.IdempotencyRecord{
		Key:         key,
		RequestHash: data["request_hash"],
	}
	if raw, ok := data["response_code"]; ok && raw != "" {
		if code, convErr := strconv.Atoi(raw); convErr == nil {
			rec.ResponseCode = code
		}
	}
	if raw, ok := data["response_body"]; ok && raw != "" {
		rec.ResponseBody = []byte(raw)
	}
	return rec, nil
}

func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error {
	redisKey := idempotencyKeyPrefix + key
	set, err := s.client.HSetNX(ctx, redisKey, "request_hash", requestHash).Result()
	if err != nil {
		return err
	}
	if !set {
		return domain.ErrConflict
	}
	ttl := time.Until(expiresAt)
	if ttl > 0 {
		_ = s.client.Expire(ctx, redisKey, ttl).Err()
	}
	return nil
}

func (s *RedisIdempotencyStore) Complete(ctx context.Context, key string, responseCode int, responseBody []byte, _ time.Time) error {
	return s.client.HSet(ctx, idempotencyKeyPrefix+key,
		"response_code", strconv.Itoa(responseCode),
		"response_body", string(responseBody),
	).Err()
}
