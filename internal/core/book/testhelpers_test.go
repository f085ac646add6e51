// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookshelf/internal/core/book"
	"github.com/taibuivan/bookshelf/internal/core/cover"
	"github.com/taibuivan/bookshelf/internal/platform/apperr"
)

const publicBase = "http://localhost:4000"

func pngCover(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 3), G: uint8(y * 5), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

// # Fakes

var errInjected = errors.New("injected failure")

// flakyRepository fails selected writes and otherwise defers to memory.
type flakyRepository struct {
	*book.MemoryRepository
	failCreate bool
	failUpdate bool
	failDelete bool

	// beforeUpdate runs between the service's read and its write.
	beforeUpdate func()
}

func (r *flakyRepository) Create(ctx context.Context, b *book.Book) error {
	if r.failCreate {
		return apperr.Storage(errInjected)
	}
	return r.MemoryRepository.Create(ctx, b)
}

func (r *flakyRepository) Update(ctx context.Context, id string, fn book.RecordMutation) (*book.Book, error) {
	if r.failUpdate {
		return nil, apperr.Storage(errInjected)
	}
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	return r.MemoryRepository.Update(ctx, id, fn)
}

func (r *flakyRepository) Delete(ctx context.Context, id string) error {
	if r.failDelete {
		return apperr.Storage(errInjected)
	}
	return r.MemoryRepository.Delete(ctx, id)
}

// flakyStore fails selected asset operations and otherwise writes to disk.
type flakyStore struct {
	*cover.DiskStore
	failPut    bool
	failDelete bool
}

func (s *flakyStore) Put(ctx context.Context, name string, body []byte, contentType string) error {
	if s.failPut {
		return apperr.Storage(errInjected)
	}
	return s.DiskStore.Put(ctx, name, body, contentType)
}

func (s *flakyStore) Delete(ctx context.Context, name string) error {
	if s.failDelete {
		return apperr.Storage(errInjected)
	}
	return s.DiskStore.Delete(ctx, name)
}

// spyCache counts invalidations and serves whatever was last stored.
type spyCache struct {
	mu            sync.Mutex
	stored        map[int][]*book.Book
	invalidations int
	reads         int
}

func newSpyCache() *spyCache {
	return &spyCache{stored: map[int][]*book.Book{}}
}

func (c *spyCache) Get(_ context.Context, limit int) ([]*book.Book, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	books, ok := c.stored[limit]
	return books, ok, nil
}

func (c *spyCache) Set(_ context.Context, limit int, books []*book.Book) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored[limit] = books
	return nil
}

func (c *spyCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations++
	c.stored = map[int][]*book.Book{}
	return nil
}

// # Fixture

type fixture struct {
	service  *book.Service
	repo     *flakyRepository
	store    *flakyStore
	cache    *spyCache
	assetDir string
	staging  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	assetDir := t.TempDir()
	disk, err := cover.NewDiskStore(assetDir)
	require.NoError(t, err)

	f := &fixture{
		repo:     &flakyRepository{MemoryRepository: book.NewMemoryRepository()},
		store:    &flakyStore{DiskStore: disk},
		cache:    newSpyCache(),
		assetDir: assetDir,
		staging:  t.TempDir(),
	}

	opts := cover.DefaultOptions()
	opts.MaxWidth, opts.MaxHeight = 60, 90

	f.service = book.NewService(
		f.repo,
		f.store,
		cover.NewTranscoder(opts),
		f.cache,
		book.Settings{PublicBaseURL: publicBase},
		discardLogger(),
	)
	return f
}

func (f *fixture) upload(t *testing.T, name string, data []byte) *cover.Upload {
	t.Helper()
	upload, err := cover.Stage(f.staging, name, bytes.NewReader(data), 10<<20)
	require.NoError(t, err)
	return upload
}

func (f *fixture) create(t *testing.T, actor string) *book.Book {
	t.Helper()
	created, err := f.service.Create(context.Background(), actor, validMetadata(), f.upload(t, "cover.png", pngCover(t, 40, 60)))
	require.NoError(t, err)
	return created
}

func validMetadata() book.Metadata {
	return book.Metadata{Title: "Dune", Author: "Frank Herbert", Year: 1965, Genre: "Science Fiction"}
}
