package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"skmart/backend/internal/domain"
)

const cartKeyPrefix = "skmart:cart:"

type RedisCartCache struct {
	client *redis.Client
}

func NewRedisCartCache(addr string, password string, db int) *RedisCartCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisCartCache{client: client}
}

func (c *RedisCartCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCartCache) Close() error {
	return c.client.Close()
}

func (c *RedisCartCache) Get(ctx context.Context, terminalID string) (domain.Cart, bool, error) {
	val, err := c.client.Get(ctx, cartKeyPrefix+terminalID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{}, false, nil
	}
	if err != nil {
		return domain.Cart{}, false, err
	}

	var cart domain.Cart
	if err := json.Unmarshal(val, &cart); err != nil {
		return domain.Cart{}, false, err
	}
	if cart.Lines == nil {
		cart.Lines = []domain.CartLine{}
	}
	return cart, true, nil
}

func (c *RedisCartCache) Set(ctx context.Context, cart domain.Cart, ttl time.Duration) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cartKeyPrefix+cart.TerminalID, payload, ttl).Err()
}

func (c *RedisCartCache) Delete(ctx context.Context, terminalID string) error {
	return c.client.Del(ctx, cartKeyPrefix+terminalID).Err()
}
