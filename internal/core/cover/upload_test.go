// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cover_test

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookshelf/internal/core/cover"
	"github.com/taibuivan/bookshelf/internal/platform/apperr"
)

/*
TestStage_RoundTrip verifies that staged bytes are readable and discarded.
*/
func TestStage_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	upload, err := cover.Stage(dir, "a.png", bytes.NewReader([]byte("hello")), 1024)
	require.NoError(t, err)
	assert.Equal(t, int64(5), upload.Size)

	file, err := upload.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	assert.Equal(t, "hello", string(data))

	require.NoError(t, upload.Discard())
	require.NoError(t, upload.Discard())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

/*
TestStage_Limits verifies the size and emptiness checks leave nothing behind.
*/
func TestStage_Limits(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"too_large", bytes.Repeat([]byte("x"), 11)},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			_, err := cover.Stage(dir, "a.png", bytes.NewReader(tt.data), 10)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}
