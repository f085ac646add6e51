// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package redis connects the go-redis client used by the best-rated cache.
//
// Nothing in Redis is authoritative. Every key carries a TTL and every caller
// falls back to Postgres on a miss or an error, so the timeouts here are short.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout   = 3 * time.Second
	ioTimeout     = 500 * time.Millisecond
	pingTimeout   = 2 * time.Second
	slowThreshold = 100 * time.Millisecond
)

// NewClient parses redisURL, tunes the pool for a cache workload and pings
// the server once. Pool and timeout settings given as URL query parameters
// win over the defaults here.
func NewClient(ctx context.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	applyDefaults(options)

	client := redis.NewClient(options)
	client.AddHook(slowCommandHook{logger: logger, threshold: slowThreshold})

	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_connected", slog.String("addr", options.Addr), slog.Int("db", options.DB))
	return client, nil
}

func applyDefaults(options *redis.Options) {
	if options.PoolSize == 0 {
		options.PoolSize = 10
	}
	if options.MaxIdleConns == 0 {
		options.MaxIdleConns = 4
	}
	if options.DialTimeout == 0 {
		options.DialTimeout = dialTimeout
	}
	if options.ReadTimeout == 0 {
		options.ReadTimeout = ioTimeout
	}
	if options.WriteTimeout == 0 {
		options.WriteTimeout = ioTimeout
	}
	options.MaxRetries = 1
}

// Ping is the readiness probe for the cache.
func Ping(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

// slowCommandHook logs commands that take longer than threshold.
type slowCommandHook struct {
	logger    *slog.Logger
	threshold time.Duration
}

func (h slowCommandHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h slowCommandHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		started := time.Now()
		err := next(ctx, cmd)
		h.observe(ctx, cmd.Name(), 1, time.Since(started))
		return err
	}
}

func (h slowCommandHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		started := time.Now()
		err := next(ctx, cmds)
		h.observe(ctx, "pipeline", len(cmds), time.Since(started))
		return err
	}
}

func (h slowCommandHook) observe(ctx context.Context, name string, commands int, elapsed time.Duration) {
	if elapsed < h.threshold {
		return
	}
	h.logger.WarnContext(ctx, "redis_slow_command",
		slog.String("command", name),
		slog.Int("commands", commands),
		slog.Duration("elapsed", elapsed),
	)
}
