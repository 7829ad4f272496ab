package store

import (
	"context"
	"time"

	"github.com/go-redis/redis"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/domain"
)

const blockedTokenPrefix = "blocked_token:"

type TokenRedisCache struct {
	client *redis.Client
	tracer trace.Tracer
}

func NewTokenRedisCache(client *redis.Client, tracer trace.Tracer) domain.TokenCache {
	return &TokenRedisCache{
		client: client,
		tracer: tracer,
	}
}

func (c *TokenRedisCache) BlockToken(ctx context.Context, token string, ttl time.Duration) error {
	ctx, span := c.tracer.Start(ctx, "TokenCache.BlockToken")
	defer span.End()

	if ttl <= 0 {
		// Token already expired, nothing to block.
		return nil
	}

	result := c.client.Set(blockedTokenPrefix+token, "1", ttl)
	if result.Err() != nil {
		span.SetStatus(codes.Error, "Error blocking token")
		return result.Err()
	}
	return nil
}

func (c *TokenRedisCache) IsTokenBlocked(ctx context.Context, token string) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "TokenCache.IsTokenBlocked")
	defer span.End()

	_, err := c.client.Get(blockedTokenPrefix + token).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		span.SetStatus(codes.Error, "Error checking token")
		return false, err
	}
	return true, nil
}
