// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import "context"

// # Data Access

// RatingMutation computes the next state of a book from its current state.
// It must not modify current and may only append ratings.
type RatingMutation func(current *Book) (*Book, error)

// RecordMutation computes the next metadata and ImageURL of a book from its
// current state. It must not modify current.
type RecordMutation func(current *Book) (*Book, error)

// Repository defines the data access contract for book records.
type Repository interface {

	/*
		Create persists a brand-new book with its seed ratings.

		Parameters:
		  - ctx: context.Context
		  - book: *Book (ID, owner and ImageURL already set)

		Returns:
		  - error: Persistence failures
	*/
	Create(ctx context.Context, book *Book) error

	/*
		Get returns the book with the given ID.

		Returns:
		  - *Book: Hydrated entity including ratings
		  - error: NOT_FOUND or persistence failures
	*/
	Get(ctx context.Context, id string) (*Book, error)

	/*
		Update applies fn to the latest stored book and persists the metadata
		and ImageURL it returns as one atomic step. Concurrent updates of the
		same book are serialised, so fn never sees a stale ImageURL. Ratings
		and the average are never written through Update.

		Returns:
		  - *Book: The stored book after the write, ratings included
		  - error: fn's error unchanged, NOT_FOUND, or persistence failures
	*/
	Update(ctx context.Context, id string, fn RecordMutation) (*Book, error)

	/*
		Delete removes the book and its ratings.

		Returns:
		  - error: NOT_FOUND or persistence failures
	*/
	Delete(ctx context.Context, id string) error

	// List returns every book in insertion order.
	List(ctx context.Context) ([]*Book, error)

	// TopRated returns at most limit books ordered by average rating
	// descending, ties broken by ID ascending.
	TopRated(ctx context.Context, limit int) ([]*Book, error)

	/*
		MutateRatings applies fn to the current book and persists the appended
		ratings and new average as one atomic step. Concurrent mutations of the
		same book are serialised, so fn always sees the latest ratings.

		Returns:
		  - *Book: The persisted result of fn
		  - error: fn's error unchanged, NOT_FOUND, or persistence failures
	*/
	MutateRatings(ctx context.Context, id string, fn RatingMutation) (*Book, error)
}
