// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cover

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
)

// Upload is a client file spooled to a staging file on local disk. It lives
// only until the canonical asset is stored, then [Upload.Discard] removes it.
type Upload struct {
	// OriginalName is the client-supplied file name. It only seeds the asset name.
	OriginalName string

	// Size is the number of bytes staged.
	Size int64

	path string
}

// Stage copies r into a new file under dir (os.TempDir when empty). At most
// maxBytes are accepted; a larger body yields a validation error and leaves
// nothing behind.
func Stage(dir, originalName string, r io.Reader, maxBytes int64) (*Upload, error) {
	file, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("cover: create staging file: %w", err))
	}

	upload := &Upload{OriginalName: originalName, path: file.Name()}

	written, copyErr := io.Copy(file, io.LimitReader(r, maxBytes+1))
	closeErr := file.Close()

	switch {
	case copyErr != nil:
		_ = upload.Discard()
		return nil, apperr.Storage(fmt.Errorf("cover: write staging file: %w", copyErr))
	case closeErr != nil:
		_ = upload.Discard()
		return nil, apperr.Storage(fmt.Errorf("cover: close staging file: %w", closeErr))
	case written > maxBytes:
		_ = upload.Discard()
		return nil, apperr.ValidationError(fmt.Sprintf("Image exceeds the %d byte limit", maxBytes))
	case written == 0:
		_ = upload.Discard()
		return nil, apperr.ValidationError("Image is empty")
	}

	upload.Size = written
	return upload, nil
}

// Open returns a reader over the staged bytes. The caller closes it.
func (u *Upload) Open() (*os.File, error) {
	file, err := os.Open(u.path)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("cover: open staging file: %w", err))
	}
	return file, nil
}

// Discard removes the staging file. It is safe to call more than once.
func (u *Upload) Discard() error {
	if u == nil || u.path == "" {
		return nil
	}
	if err := os.Remove(u.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cover: discard staging file %s: %w", u.path, err)
	}
	return nil
}
