// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cover_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gen2brain/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookshelf/internal/core/cover"
	"github.com/taibuivan/bookshelf/internal/platform/apperr"
)

/*
TestTranscode_CanonicalOutput verifies that JPEG and PNG become WebP.
*/
func TestTranscode_CanonicalOutput(t *testing.T) {
	transcoder := cover.NewTranscoder(cover.Options{MaxWidth: 100, MaxHeight: 150, Quality: 80})

	tests := []struct {
		name string
		data []byte
	}{
		{"png", pngBytes(t, 40, 60)},
		{"jpeg", jpegBytes(t, 40, 60)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset, err := transcoder.Transcode(context.Background(), stage(t, "Cover."+tt.name, tt.data))
			require.NoError(t, err)

			assert.Equal(t, "image/webp", asset.ContentType)
			assert.True(t, mimetype.Detect(asset.Body).Is("image/webp"))
			assert.False(t, asset.Passthrough)
			assert.True(t, isCanonicalName(asset.Name))
		})
	}
}

/*
TestTranscode_FitNoUpscale verifies the resize policy.
*/
func TestTranscode_FitNoUpscale(t *testing.T) {
	transcoder := cover.NewTranscoder(cover.Options{MaxWidth: 100, MaxHeight: 100, Quality: 80})

	t.Run("large_is_fitted", func(t *testing.T) {
		asset, err := transcoder.Transcode(context.Background(), stage(t, "big.png", pngBytes(t, 400, 200)))
		require.NoError(t, err)
		assert.Equal(t, 100, asset.Width)
		assert.Equal(t, 50, asset.Height)

		config, err := webp.DecodeConfig(bytes.NewReader(asset.Body))
		require.NoError(t, err)
		assert.Equal(t, 100, config.Width)
	})

	t.Run("small_is_kept", func(t *testing.T) {
		asset, err := transcoder.Transcode(context.Background(), stage(t, "small.png", pngBytes(t, 30, 20)))
		require.NoError(t, err)
		assert.Equal(t, 30, asset.Width)
		assert.Equal(t, 20, asset.Height)
	})
}

/*
TestTranscode_Idempotent verifies that canonical input is copied byte for byte.
*/
func TestTranscode_Idempotent(t *testing.T) {
	transcoder := cover.NewTranscoder(cover.DefaultOptions())

	first, err := transcoder.Transcode(context.Background(), stage(t, "a.png", pngBytes(t, 50, 50)))
	require.NoError(t, err)

	second, err := transcoder.Transcode(context.Background(), stage(t, first.Name, first.Body))
	require.NoError(t, err)

	assert.True(t, second.Passthrough)
	assert.Equal(t, first.Body, second.Body)
	assert.NotEqual(t, first.Name, second.Name)
}

/*
TestTranscode_Passthrough verifies that uploaded WebP is not re-encoded.
*/
func TestTranscode_Passthrough(t *testing.T) {
	data := webpBytes(t, 20, 20)
	asset, err := cover.NewTranscoder(cover.DefaultOptions()).Transcode(context.Background(), stage(t, "w.webp", data))
	require.NoError(t, err)

	assert.True(t, asset.Passthrough)
	assert.Equal(t, data, asset.Body)
}

/*
TestTranscode_Rejects verifies that unsupported or corrupt input is a transcode error.
*/
func TestTranscode_Rejects(t *testing.T) {
	transcoder := cover.NewTranscoder(cover.DefaultOptions())
	corruptPNG := pngBytes(t, 10, 10)[:40]

	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("definitely not an image")},
		{"pdf", []byte("%PDF-1.4\n%âãÏÓ\n")},
		{"truncated_png", corruptPNG},
		{"corrupt_webp", append([]byte("RIFF\x10\x00\x00\x00WEBPVP8 "), bytes.Repeat([]byte{0}, 8)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transcoder.Transcode(context.Background(), stage(t, "x.png", tt.data))
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, apperr.CodeTranscode), "got %v", err)
		})
	}
}

/*
TestTranscode_Deadline verifies that an expired context surfaces as a transcode error.
*/
func TestTranscode_Deadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cover.NewTranscoder(cover.DefaultOptions()).Transcode(ctx, stage(t, "a.png", pngBytes(t, 10, 10)))
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeTranscode))
}
