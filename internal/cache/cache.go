// cache — опциональный Redis-кэш ленты трендов.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/pribylovaa/blog-service/internal/models"
	"github.com/redis/go-redis/v9"
)

const trendingKey = "blogs:trending"

// TrendingCache — минимальный контракт кэша ленты трендов.
type TrendingCache interface {
	// Get возвращает ленту и признак её наличия в кэше.
	Get(ctx context.Context) ([]models.Blog, bool, error)
	// Set сохраняет ленту с TTL.
	Set(ctx context.Context, blogs []models.Blog, ttl time.Duration) error
	// Invalidate удаляет ленту (после создания/удаления блога или лайка).
	Invalidate(ctx context.Context) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "blog:".
func NewRedisCache(ctx context.Context, redisURL, prefix string) (TrendingCache, error) {
	if prefix == "" {
		prefix = "blog:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: prefix}, nil
}

func (c *redisCache) key() string { return c.prefix + trendingKey }

// Храним как JSON-строку: лента короткая и всегда читается целиком.
func (c *redisCache) Get(ctx context.Context) ([]models.Blog, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	var blogs []models.Blog
	if err := json.Unmarshal(raw, &blogs); err != nil {
		return nil, false, err
	}

	return blogs, true, nil
}

func (c *redisCache) Set(ctx context.Context, blogs []models.Blog, ttl time.Duration) error {
	raw, err := json.Marshal(blogs)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, c.key(), raw, ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, c.key()).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }
