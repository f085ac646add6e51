// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
)

// MemoryRepository is an in-process [Repository]. It backs unit tests and
// local runs without Postgres. One mutex guards every record.
type MemoryRepository struct {
	mu    sync.RWMutex
	books map[string]*Book
	order []string
	now   func() time.Time
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{books: make(map[string]*Book), now: time.Now}
}

func (repository *MemoryRepository) Create(_ context.Context, book *Book) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, exists := repository.books[book.ID]; exists {
		return apperr.Conflict("Book already exists")
	}
	for _, existing := range repository.books {
		if existing.ImageURL == book.ImageURL {
			return apperr.Conflict("Cover is already in use")
		}
	}

	now := repository.now().UTC()
	book.CreatedAt, book.UpdatedAt = now, now
	if book.Ratings == nil {
		book.Ratings = []Rating{}
	}

	repository.books[book.ID] = book.clone()
	repository.order = append(repository.order, book.ID)
	return nil
}

func (repository *MemoryRepository) Get(_ context.Context, id string) (*Book, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	book, ok := repository.books[id]
	if !ok {
		return nil, apperr.NotFound("Book")
	}
	return book.clone(), nil
}

func (repository *MemoryRepository) Update(_ context.Context, id string, fn RecordMutation) (*Book, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, ok := repository.books[id]
	if !ok {
		return nil, apperr.NotFound("Book")
	}

	next, err := fn(stored.clone())
	if err != nil {
		return nil, err
	}

	stored.Title = next.Title
	stored.Author = next.Author
	stored.Year = next.Year
	stored.Genre = next.Genre
	stored.ImageURL = next.ImageURL
	stored.UpdatedAt = repository.now().UTC()

	return stored.clone(), nil
}

func (repository *MemoryRepository) Delete(_ context.Context, id string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.books[id]; !ok {
		return apperr.NotFound("Book")
	}

	delete(repository.books, id)
	repository.order = slices.DeleteFunc(repository.order, func(existing string) bool { return existing == id })
	return nil
}

func (repository *MemoryRepository) List(_ context.Context) ([]*Book, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	books := make([]*Book, 0, len(repository.order))
	for _, id := range repository.order {
		books = append(books, repository.books[id].clone())
	}
	return books, nil
}

func (repository *MemoryRepository) TopRated(ctx context.Context, limit int) ([]*Book, error) {
	books, _ := repository.List(ctx)

	slices.SortStableFunc(books, func(a, b *Book) int {
		switch {
		case a.AverageRating > b.AverageRating:
			return -1
		case a.AverageRating < b.AverageRating:
			return 1
		default:
			return strings.Compare(a.ID, b.ID)
		}
	})

	if limit >= 0 && len(books) > limit {
		books = books[:limit]
	}
	return books, nil
}

func (repository *MemoryRepository) MutateRatings(_ context.Context, id string, fn RatingMutation) (*Book, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, ok := repository.books[id]
	if !ok {
		return nil, apperr.NotFound("Book")
	}

	next, err := fn(stored.clone())
	if err != nil {
		return nil, err
	}

	stored.Ratings = append(make([]Rating, 0, len(next.Ratings)), next.Ratings...)
	stored.AverageRating = next.AverageRating
	stored.UpdatedAt = repository.now().UTC()

	return stored.clone(), nil
}
