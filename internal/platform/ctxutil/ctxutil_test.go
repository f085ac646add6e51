// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookshelf/internal/platform/ctxutil"
	"github.com/taibuivan/bookshelf/internal/platform/sec"
)

/*
TestRequestID verifies the correlation ID round trip.
*/
func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	ctx = ctxutil.WithRequestID(ctx, "req-42")
	assert.Equal(t, "req-42", ctxutil.GetRequestID(ctx))
}

/*
TestLogger verifies the fallbacks when no request logger is attached.
*/
func TestLogger(t *testing.T) {
	ctx := context.Background()
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.Same(t, slog.Default(), ctxutil.GetLogger(ctx))
	assert.Same(t, fallback, ctxutil.LoggerOr(ctx, fallback))
	assert.Same(t, slog.Default(), ctxutil.LoggerOr(ctx, nil))

	attached := slog.New(slog.NewJSONHandler(io.Discard, nil))
	ctx = ctxutil.WithLogger(ctx, attached)

	assert.Same(t, attached, ctxutil.GetLogger(ctx))
	assert.Same(t, attached, ctxutil.LoggerOr(ctx, fallback))
}

/*
TestAuthUser verifies claims storage and the UserID shortcut.
*/
func TestAuthUser(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, ctxutil.GetAuthUser(ctx))
	_, ok := ctxutil.UserID(ctx)
	assert.False(t, ok)

	ctx = ctxutil.WithAuthUser(ctx, &sec.AuthClaims{UserID: "user-123", Email: "reader@example.com"})

	claims := ctxutil.GetAuthUser(ctx)
	require.NotNil(t, claims)
	assert.Equal(t, "reader@example.com", claims.Email)

	id, ok := ctxutil.UserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-123", id)

	_, ok = ctxutil.UserID(ctxutil.WithAuthUser(context.Background(), &sec.AuthClaims{}))
	assert.False(t, ok)
}
