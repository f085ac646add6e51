// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package book implements the catalog: book records, their covers and their ratings.

# Architecture

  - Domain: [Book], [Rating] and the pure rules in rating.go and ownership.go.
  - Repository: [Repository] with Postgres and in-memory implementations.
  - Service: [Service] sequences cover storage against record persistence.
  - Delivery: [Handler] exposes the chi routes under /api/v1/books.

Invariants kept across every operation:

  - A stored book always references exactly one existing cover asset.
  - A cover asset is referenced by at most one book.
  - AverageRating is always derived from Ratings, never accepted from a client.
  - Each user rates a book at most once.
*/
package book

import (
	"time"

	"github.com/taibuivan/bookshelf/internal/platform/validate"
)

// # Domain Entities

// Rating is one user's grade for a book.
type Rating struct {
	UserID string `json:"user_id"`
	Grade  int    `json:"grade"`
}

// Book is a catalog record.
type Book struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Year          int       `json:"year"`
	Genre         string    `json:"genre"`
	ImageURL      string    `json:"image_url"`
	Ratings       []Rating  `json:"ratings"`
	AverageRating float64   `json:"average_rating"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// clone returns a deep copy so callers never share the Ratings backing array.
func (b *Book) clone() *Book {
	if b == nil {
		return nil
	}
	copied := *b
	copied.Ratings = append(make([]Rating, 0, len(b.Ratings)), b.Ratings...)
	return &copied
}

// # Inputs

// Metadata is the client-supplied part of a new book. The owner, cover,
// identifiers and average are always set by the server.
type Metadata struct {
	Title   string   `json:"title"`
	Author  string   `json:"author"`
	Year    int      `json:"year"`
	Genre   string   `json:"genre"`
	Ratings []Rating `json:"ratings"`
}

// Patch carries the fields an owner may change. Nil means unchanged.
// Ownership, ratings and average are not part of it, so a payload that
// carries them has those keys ignored by the decoder.
type Patch struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	Year   *int    `json:"year"`
	Genre  *string `json:"genre"`
}

// # Field Identifiers

const (
	FieldTitle  = "title"
	FieldAuthor = "author"
	FieldYear   = "year"
	FieldGenre  = "genre"
	FieldImage  = "image"
	FieldBook   = "book"
	FieldGrade  = "rating"
)

// # Constraints

const (
	maxTextLen = 200
	maxYear    = 9999
)

// validateFields applies the metadata rules shared by create and update.
func validateFields(title, author, genre string, year int) error {
	validator := &validate.Validator{}

	validator.Required(FieldTitle, title).MaxLen(FieldTitle, title, maxTextLen)
	validator.Required(FieldAuthor, author).MaxLen(FieldAuthor, author, maxTextLen)
	validator.Required(FieldGenre, genre).MaxLen(FieldGenre, genre, maxTextLen)
	validator.Range(FieldYear, year, 0, maxYear)

	return validator.Err()
}
