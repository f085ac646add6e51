// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cover

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
)

// DiskStore keeps assets as files in one directory, served statically under
// the images path by the API server.
type DiskStore struct {
	dir string
}

// NewDiskStore creates dir if needed and returns a store rooted there.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cover: create asset dir %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the directory assets are written to.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Put writes to a temporary file and renames it into place, so a reader never
// sees a partially written asset.
func (s *DiskStore) Put(ctx context.Context, name string, body []byte, _ string) error {
	if !ValidName(name) {
		return apperr.Storage(fmt.Errorf("cover: invalid asset name %q", name))
	}
	if err := ctx.Err(); err != nil {
		return apperr.Storage(err)
	}

	tmp, err := os.CreateTemp(s.dir, ".put-*")
	if err != nil {
		return apperr.Storage(fmt.Errorf("cover: create temp asset: %w", err))
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(body)
	syncErr := tmp.Sync()
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, syncErr, closeErr); err != nil {
		_ = os.Remove(tmpPath)
		return apperr.Storage(fmt.Errorf("cover: write asset %s: %w", name, err))
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return apperr.Storage(fmt.Errorf("cover: chmod asset %s: %w", name, err))
	}

	if err := os.Rename(tmpPath, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpPath)
		return apperr.Storage(fmt.Errorf("cover: publish asset %s: %w", name, err))
	}

	return nil
}

// Delete removes the asset file. A missing file is not an error.
func (s *DiskStore) Delete(_ context.Context, name string) error {
	if !ValidName(name) {
		return apperr.Storage(fmt.Errorf("cover: invalid asset name %q", name))
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperr.Storage(fmt.Errorf("cover: delete asset %s: %w", name, err))
	}
	return nil
}

// Exists reports whether the asset file is present.
func (s *DiskStore) Exists(_ context.Context, name string) (bool, error) {
	if !ValidName(name) {
		return false, nil
	}

	_, err := os.Stat(filepath.Join(s.dir, name))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, apperr.Storage(fmt.Errorf("cover: stat asset %s: %w", name, err))
	}
}
