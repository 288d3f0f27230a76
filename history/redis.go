package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"

	"github.com/vijay-talsangi/tourist-app/types"
)

const redisKeyPrefix = "tourpay:history:"

var _ Store = (*RedisStore)(nil)

// RedisStore keeps snapshots in Redis so a fronting service can serve the
// last known history across restarts. Snapshots expire after ttl; an
// expired or missing key just means the next read goes to the ledger.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing Redis client. A zero ttl keeps snapshots
// until explicitly dropped.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(owner common.Address) string {
	return redisKeyPrefix + owner.Hex()
}

func (s *RedisStore) Load(ctx context.Context, owner common.Address) ([]types.Payment, bool, error) {
	data, err := s.client.Get(ctx, redisKey(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load history snapshot: %w", err)
	}

	var payments []types.Payment
	if err := json.Unmarshal(data, &payments); err != nil {
		return nil, false, fmt.Errorf("decode history snapshot: %w", err)
	}
	return payments, true, nil
}

func (s *RedisStore) Save(ctx context.Context, owner common.Address, payments []types.Payment) error {
	data, err := json.Marshal(payments)
	if err != nil {
		return fmt.Errorf("encode history snapshot: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(owner), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save history snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Drop(ctx context.Context, owner common.Address) error {
	if err := s.client.Del(ctx, redisKey(owner)).Err(); err != nil {
		return fmt.Errorf("drop history snapshot: %w", err)
	}
	return nil
}
