package expense

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisBalanceCache caches the balance projection in Redis keyed by group
// id. Cache errors degrade to a miss; the projection is always recomputable.
type RedisBalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBalanceCache creates a balance cache on top of a Redis client
func NewRedisBalanceCache(client *redis.Client, ttl time.Duration) *RedisBalanceCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisBalanceCache{client: client, ttl: ttl}
}

var _ BalanceCache = (*RedisBalanceCache)(nil)

func balanceKey(groupID uuid.UUID) string {
	return "balances:" + groupID.String()
}

// Get returns the cached projection for a group, if present
func (c *RedisBalanceCache) Get(ctx context.Context, groupID uuid.UUID) (*GroupBalance, bool) {
	data, err := c.client.Get(ctx, balanceKey(groupID)).Bytes()
	if err != nil {
		return nil, false
	}

	var balance GroupBalance
	if err := json.Unmarshal(data, &balance); err != nil {
		return nil, false
	}
	return &balance, true
}

// Set stores the projection for a group
func (c *RedisBalanceCache) Set(ctx context.Context, groupID uuid.UUID, balance *GroupBalance) {
	data, err := json.Marshal(balance)
	if err != nil {
		return
	}
	c.client.Set(ctx, balanceKey(groupID), data, c.ttl)
}

// Invalidate drops the cached projection for a group
func (c *RedisBalanceCache) Invalidate(ctx context.Context, groupID uuid.UUID) {
	c.client.Del(ctx, balanceKey(groupID))
}
