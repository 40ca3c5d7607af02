package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisProvider 从 Redis hash 中读取密钥，field 为密钥名称
type RedisProvider struct {
	rdb  redis.Cmdable
	hash string
}

func NewRedisProvider(rdb redis.Cmdable, hash string) *RedisProvider {
	return &RedisProvider{rdb: rdb, hash: hash}
}

func (p *RedisProvider) Name() string { return "redis" }

func (p *RedisProvider) Get(ctx context.Context, key string) (string, error) {
	val, err := p.rdb.HGet(ctx, p.hash, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", &NotFoundError{Key: key, Provider: p.Name()}
	}
	if err != nil {
		return "", fmt.Errorf("redis hget %s: %w", p.hash, err)
	}
	return val, nil
}
