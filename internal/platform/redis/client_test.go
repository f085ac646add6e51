// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestNewClient connects, pings and applies the pool defaults.
*/
func TestNewClient(t *testing.T) {
	server := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := NewClient(context.Background(), "redis://"+server.Addr()+"/0?pool_size=3", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.Equal(t, 3, client.Options().PoolSize)
	assert.Equal(t, ioTimeout, client.Options().ReadTimeout)
	assert.Equal(t, 1, client.Options().MaxRetries)

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	require.NoError(t, Ping(context.Background(), client))

	server.Close()
	assert.Error(t, Ping(context.Background(), client))
}

/*
TestNewClient_Rejects covers a malformed URL and an unreachable server.
*/
func TestNewClient_Rejects(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewClient(context.Background(), "http://not-redis", logger)
	assert.ErrorContains(t, err, "parse url")

	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	_, err = NewClient(context.Background(), "redis://"+addr, logger)
	assert.ErrorContains(t, err, "ping")
}

/*
TestSlowCommandHook logs only past the threshold.
*/
func TestSlowCommandHook(t *testing.T) {
	var buf bytes.Buffer
	hook := slowCommandHook{logger: slog.New(slog.NewTextHandler(&buf, nil)), threshold: slowThreshold}

	hook.observe(context.Background(), "get", 1, slowThreshold/2)
	assert.Empty(t, buf.String())

	hook.observe(context.Background(), "pipeline", 2, 2*slowThreshold)
	assert.Contains(t, buf.String(), "redis_slow_command")
	assert.Contains(t, buf.String(), "command=pipeline")
}
