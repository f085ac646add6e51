// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookshelf/internal/core/book"
	"github.com/taibuivan/bookshelf/internal/platform/apperr"
)

func seedBook(t *testing.T, repo book.Repository, id string, average float64) *book.Book {
	t.Helper()
	b := &book.Book{
		ID:            id,
		UserID:        "owner",
		Title:         "Title " + id,
		Author:        "Author",
		Year:          2001,
		Genre:         "Fiction",
		ImageURL:      "http://localhost:4000/images/" + id + ".webp",
		AverageRating: average,
	}
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

/*
TestMemoryRepository_CRUD walks one record through its lifecycle.
*/
func TestMemoryRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := book.NewMemoryRepository()

	created := seedBook(t, repo, "a", 0)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Title a", got.Title)
	assert.NotNil(t, got.Ratings)

	rename := func(current *book.Book) (*book.Book, error) {
		next := *current
		next.Title = "Changed"
		return &next, nil
	}

	updated, err := repo.Update(ctx, "a", rename)
	require.NoError(t, err)
	assert.Equal(t, "Changed", updated.Title)
	assert.NotNil(t, updated.Ratings)

	again, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Changed", again.Title)

	require.NoError(t, repo.Delete(ctx, "a"))

	_, err = repo.Get(ctx, "a")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	assert.True(t, apperr.HasCode(repo.Delete(ctx, "a"), apperr.CodeNotFound))
	_, err = repo.Update(ctx, "a", rename)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

/*
TestMemoryRepository_UpdateSeesLatestState ensures a mutation reads the record
as stored at write time and a rejected mutation changes nothing.
*/
func TestMemoryRepository_UpdateSeesLatestState(t *testing.T) {
	ctx := context.Background()
	repo := book.NewMemoryRepository()
	seedBook(t, repo, "a", 0)

	_, err := repo.Update(ctx, "a", func(current *book.Book) (*book.Book, error) {
		next := *current
		next.ImageURL = "http://localhost:4000/images/replaced.webp"
		return &next, nil
	})
	require.NoError(t, err)

	t.Run("mutation_sees_replaced_cover", func(t *testing.T) {
		var seen string
		_, err := repo.Update(ctx, "a", func(current *book.Book) (*book.Book, error) {
			seen = current.ImageURL
			next := *current
			next.Genre = "Drama"
			return &next, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:4000/images/replaced.webp", seen)
	})

	t.Run("rejected_mutation_leaves_state", func(t *testing.T) {
		_, err := repo.Update(ctx, "a", func(*book.Book) (*book.Book, error) {
			return nil, apperr.Forbidden("Not yours")
		})
		assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

		got, err := repo.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "Drama", got.Genre)
		assert.Equal(t, "http://localhost:4000/images/replaced.webp", got.ImageURL)
	})
}

/*
TestMemoryRepository_UniqueCover ensures two records never share one cover.
*/
func TestMemoryRepository_UniqueCover(t *testing.T) {
	repo := book.NewMemoryRepository()
	first := seedBook(t, repo, "a", 0)

	clash := &book.Book{ID: "b", UserID: "owner", ImageURL: first.ImageURL}
	err := repo.Create(context.Background(), clash)
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
}

/*
TestMemoryRepository_ReturnsCopies ensures callers cannot mutate stored state.
*/
func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := book.NewMemoryRepository()
	seedBook(t, repo, "a", 0)

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	got.Ratings = append(got.Ratings, book.Rating{UserID: "x", Grade: 1})
	got.Title = "Local edit"

	stored, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, stored.Ratings)
	assert.Equal(t, "Title a", stored.Title)
}

/*
TestMemoryRepository_TopRated orders by average descending and breaks ties by id.
*/
func TestMemoryRepository_TopRated(t *testing.T) {
	ctx := context.Background()
	repo := book.NewMemoryRepository()

	seedBook(t, repo, "d", 3.0)
	seedBook(t, repo, "c", 4.5)
	seedBook(t, repo, "b", 5.0)
	seedBook(t, repo, "a", 4.0)
	seedBook(t, repo, "e", 4.5)

	t.Run("limit_three", func(t *testing.T) {
		top, err := repo.TopRated(ctx, 3)
		require.NoError(t, err)
		require.Len(t, top, 3)

		assert.Equal(t, "b", top[0].ID)
		assert.Equal(t, "c", top[1].ID)
		assert.Equal(t, "e", top[2].ID)
	})

	t.Run("fewer_than_limit", func(t *testing.T) {
		top, err := repo.TopRated(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, top, 5)
	})

	t.Run("empty_catalog", func(t *testing.T) {
		top, err := book.NewMemoryRepository().TopRated(ctx, 3)
		require.NoError(t, err)
		assert.Empty(t, top)
	})
}

/*
TestMemoryRepository_ListKeepsInsertionOrder checks List ordering.
*/
func TestMemoryRepository_ListKeepsInsertionOrder(t *testing.T) {
	repo := book.NewMemoryRepository()
	for _, id := range []string{"z", "a", "m"} {
		seedBook(t, repo, id, 0)
	}
	require.NoError(t, repo.Delete(context.Background(), "a"))

	books, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "z", books[0].ID)
	assert.Equal(t, "m", books[1].ID)
}

/*
TestMemoryRepository_ConcurrentRatings ensures no concurrent grade is lost.
*/
func TestMemoryRepository_ConcurrentRatings(t *testing.T) {
	ctx := context.Background()
	repo := book.NewMemoryRepository()
	seedBook(t, repo, "a", 0)

	const raters = 50
	var wg sync.WaitGroup
	for i := 0; i < raters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.MutateRatings(ctx, "a", func(current *book.Book) (*book.Book, error) {
				return book.AddRating(current, fmt.Sprintf("user-%d", i), i%6)
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, got.Ratings, raters)

	grades := make([]int, 0, raters)
	for _, r := range got.Ratings {
		grades = append(grades, r.Grade)
	}
	assert.Equal(t, book.Average(grades), got.AverageRating)
}

/*
TestMemoryRepository_MutateRatingsFailureLeavesState ensures a rejected
mutation changes nothing.
*/
func TestMemoryRepository_MutateRatingsFailureLeavesState(t *testing.T) {
	ctx := context.Background()
	repo := book.NewMemoryRepository()
	seedBook(t, repo, "a", 0)

	_, err := repo.MutateRatings(ctx, "a", func(current *book.Book) (*book.Book, error) {
		return book.AddRating(current, "u", 9)
	})
	require.Error(t, err)

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, got.Ratings)

	_, err = repo.MutateRatings(ctx, "missing", func(current *book.Book) (*book.Book, error) { return current, nil })
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}
