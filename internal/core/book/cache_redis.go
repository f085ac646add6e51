// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/bookshelf/internal/platform/constants"
)

// # Best-Rated Cache

// TopRatedCache holds the best-rated listing between mutations. A miss or a
// cache error always falls back to the repository.
type TopRatedCache interface {
	Get(ctx context.Context, limit int) ([]*Book, bool, error)
	Set(ctx context.Context, limit int, books []*Book) error
	Invalidate(ctx context.Context) error
}

// RedisTopRatedCache stores each listing size as one field of a single hash,
// so invalidation is a single DEL.
type RedisTopRatedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTopRatedCache constructs a [RedisTopRatedCache].
func NewRedisTopRatedCache(client *redis.Client, ttl time.Duration) *RedisTopRatedCache {
	return &RedisTopRatedCache{client: client, ttl: ttl}
}

func (cache *RedisTopRatedCache) Get(ctx context.Context, limit int) ([]*Book, bool, error) {
	payload, err := cache.client.HGet(ctx, constants.RedisKeyTopRated, strconv.Itoa(limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis: get top rated: %w", err)
	}

	var books []*Book
	if err := json.Unmarshal(payload, &books); err != nil {
		return nil, false, fmt.Errorf("redis: decode top rated: %w", err)
	}
	return books, true, nil
}

func (cache *RedisTopRatedCache) Set(ctx context.Context, limit int, books []*Book) error {
	payload, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("redis: encode top rated: %w", err)
	}

	pipe := cache.client.TxPipeline()
	pipe.HSet(ctx, constants.RedisKeyTopRated, strconv.Itoa(limit), payload)
	pipe.Expire(ctx, constants.RedisKeyTopRated, cache.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set top rated: %w", err)
	}
	return nil
}

func (cache *RedisTopRatedCache) Invalidate(ctx context.Context) error {
	if err := cache.client.Del(ctx, constants.RedisKeyTopRated).Err(); err != nil {
		return fmt.Errorf("redis: invalidate top rated: %w", err)
	}
	return nil
}

// NoopTopRatedCache never hits. It is used when no cache is configured.
type NoopTopRatedCache struct{}

func (NoopTopRatedCache) Get(context.Context, int) ([]*Book, bool, error) { return nil, false, nil }
func (NoopTopRatedCache) Set(context.Context, int, []*Book) error         { return nil }
func (NoopTopRatedCache) Invalidate(context.Context) error                { return nil }
