// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cover_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/gen2brain/webp"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookshelf/internal/core/cover"
)

func solidImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(width, height)))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solidImage(width, height), &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func webpBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, webp.Encode(&buf, solidImage(width, height), webp.Options{Quality: 80}))
	return buf.Bytes()
}

func stage(t *testing.T, name string, data []byte) *cover.Upload {
	t.Helper()
	upload, err := cover.Stage(t.TempDir(), name, bytes.NewReader(data), 10<<20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = upload.Discard() })
	return upload
}

func isCanonicalName(name string) bool {
	return cover.ValidName(name) && strings.Contains(name, "_")
}
