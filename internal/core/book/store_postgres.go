// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/database/schema"
	"github.com/taibuivan/bookshelf/internal/platform/dberr"
	"github.com/taibuivan/bookshelf/internal/platform/postgres"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements [Repository] on catalog.book and catalog.bookrating.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var (
	bookTable   = schema.CatalogBook
	ratingTable = schema.CatalogBookRating
)

// selectBook hydrates a book together with its ordered ratings as one JSON array.
var selectBook = fmt.Sprintf(`
	SELECT b.%s::text, b.%s::text, b.%s, b.%s, b.%s, b.%s, b.%s, b.%s::float8, b.%s, b.%s,
	       COALESCE((
	           SELECT json_agg(json_build_object('user_id', r.%s::text, 'grade', r.%s) ORDER BY r.%s)
	           FROM %s r
	           WHERE r.%s = b.%s
	       ), '[]'::json)
	FROM %s b
`,
	bookTable.ID, bookTable.UserID, bookTable.Title, bookTable.Author, bookTable.Year, bookTable.Genre,
	bookTable.ImageURL, bookTable.AverageRating, bookTable.CreatedAt, bookTable.UpdatedAt,
	ratingTable.UserID, ratingTable.Grade, ratingTable.Position,
	ratingTable.Table,
	ratingTable.BookID, bookTable.ID,
	bookTable.Table,
)

func scanBook(row pgx.Row) (*Book, error) {
	b := &Book{}
	var ratingsJSON []byte

	if err := row.Scan(
		&b.ID, &b.UserID, &b.Title, &b.Author, &b.Year, &b.Genre,
		&b.ImageURL, &b.AverageRating, &b.CreatedAt, &b.UpdatedAt, &ratingsJSON,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(ratingsJSON, &b.Ratings); err != nil {
		return nil, fmt.Errorf("decode ratings: %w", err)
	}
	if b.Ratings == nil {
		b.Ratings = []Rating{}
	}

	return b, nil
}

func (repository *PostgresRepository) Create(ctx context.Context, b *Book) error {
	insertBook := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING %s, %s
	`,
		bookTable.Table, bookTable.ID, bookTable.UserID, bookTable.Title, bookTable.Author, bookTable.Year, bookTable.Genre,
		bookTable.ImageURL, bookTable.AverageRating, bookTable.CreatedAt, bookTable.UpdatedAt,
		bookTable.CreatedAt, bookTable.UpdatedAt,
	)

	err := postgres.InTx(ctx, repository.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insertBook,
			b.ID, b.UserID, b.Title, b.Author, b.Year, b.Genre, b.ImageURL, b.AverageRating,
		).Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
			return err
		}

		for position, r := range b.Ratings {
			if err := insertRating(ctx, tx, b.ID, r, position); err != nil {
				return err
			}
		}
		return nil
	})

	return dberr.Wrap(err, "create_book")
}

func insertRating(ctx context.Context, q querier, bookID string, r Rating, position int) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, NOW())`,
		ratingTable.Table, ratingTable.BookID, ratingTable.UserID, ratingTable.Grade, ratingTable.Position, ratingTable.CreatedAt,
	)
	_, err := q.Exec(ctx, query, bookID, r.UserID, r.Grade, position)
	return err
}

func (repository *PostgresRepository) Get(ctx context.Context, id string) (*Book, error) {
	b, err := getBook(ctx, repository.db, id)
	if dberr.IsNoRows(err) {
		return nil, apperr.NotFound("Book")
	}
	return b, dberr.Wrap(err, "get_book")
}

func getBook(ctx context.Context, q querier, id string) (*Book, error) {
	query := selectBook + fmt.Sprintf(` WHERE b.%s = $1`, bookTable.ID)
	return scanBook(q.QueryRow(ctx, query, id))
}

/*
Update locks the book row, applies fn to the freshly read book and writes the
metadata and ImageURL it returns before committing.

The row lock orders concurrent updates, so a cover replaced by one update is
never written back by another that read the record earlier.
*/
func (repository *PostgresRepository) Update(ctx context.Context, id string, fn RecordMutation) (*Book, error) {
	lockQuery := fmt.Sprintf(`SELECT %s::text FROM %s WHERE %s = $1 FOR UPDATE`, bookTable.ID, bookTable.Table, bookTable.ID)
	updateQuery := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		bookTable.Table,
		bookTable.Title, bookTable.Author, bookTable.Year, bookTable.Genre, bookTable.ImageURL, bookTable.UpdatedAt,
		bookTable.ID,
		bookTable.UpdatedAt,
	)

	var result *Book
	err := postgres.InTx(ctx, repository.db, func(tx pgx.Tx) error {
		var locked string
		if err := tx.QueryRow(ctx, lockQuery, id).Scan(&locked); err != nil {
			return err
		}

		current, err := getBook(ctx, tx, id)
		if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		// Ratings are read under the same lock that MutateRatings takes.
		next.Ratings, next.AverageRating = current.Ratings, current.AverageRating

		if err := tx.QueryRow(ctx, updateQuery, id, next.Title, next.Author, next.Year, next.Genre, next.ImageURL).Scan(&next.UpdatedAt); err != nil {
			return err
		}

		result = next
		return nil
	})

	switch {
	case err == nil:
		return result, nil
	case dberr.IsNoRows(err):
		return nil, apperr.NotFound("Book")
	case dberr.IsUniqueViolation(err):
		return nil, apperr.Conflict("Cover is already in use")
	default:
		return nil, dberr.Wrap(err, "update_book")
	}
}

// Delete removes the book row; ratings go with it through ON DELETE CASCADE.
func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, bookTable.Table, bookTable.ID)

	cmd, err := repository.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_book")
	}

	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Book")
	}
	return nil
}

func (repository *PostgresRepository) List(ctx context.Context) ([]*Book, error) {
	query := selectBook + fmt.Sprintf(` ORDER BY b.%s ASC, b.%s ASC`, bookTable.CreatedAt, bookTable.ID)
	return repository.queryBooks(ctx, "list_books", query)
}

func (repository *PostgresRepository) TopRated(ctx context.Context, limit int) ([]*Book, error) {
	query := selectBook + fmt.Sprintf(` ORDER BY b.%s DESC, b.%s ASC LIMIT $1`, bookTable.AverageRating, bookTable.ID)
	return repository.queryBooks(ctx, "top_rated_books", query, limit)
}

func (repository *PostgresRepository) queryBooks(ctx context.Context, action, query string, args ...any) ([]*Book, error) {
	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, dberr.Wrap(err, action)
		}
		books = append(books, b)
	}

	return books, dberr.Wrap(rows.Err(), action)
}

/*
MutateRatings locks the book row, applies fn and writes the appended ratings
and the new average before committing.

The row lock serialises concurrent raters of the same book; the unique
(bookid, userid) constraint is reported as DUPLICATE_RATING if it ever fires.
*/
func (repository *PostgresRepository) MutateRatings(ctx context.Context, id string, fn RatingMutation) (*Book, error) {
	lockQuery := fmt.Sprintf(`SELECT %s::text FROM %s WHERE %s = $1 FOR UPDATE`, bookTable.ID, bookTable.Table, bookTable.ID)
	updateQuery := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1 RETURNING %s`,
		bookTable.Table, bookTable.AverageRating, bookTable.UpdatedAt, bookTable.ID, bookTable.UpdatedAt,
	)

	var result *Book
	err := postgres.InTx(ctx, repository.db, func(tx pgx.Tx) error {
		var locked string
		if err := tx.QueryRow(ctx, lockQuery, id).Scan(&locked); err != nil {
			return err
		}

		current, err := getBook(ctx, tx, id)
		if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		for position := len(current.Ratings); position < len(next.Ratings); position++ {
			if err := insertRating(ctx, tx, id, next.Ratings[position], position); err != nil {
				return err
			}
		}

		if err := tx.QueryRow(ctx, updateQuery, id, next.AverageRating).Scan(&next.UpdatedAt); err != nil {
			return err
		}

		result = next
		return nil
	})

	switch {
	case err == nil:
		return result, nil
	case dberr.IsNoRows(err):
		return nil, apperr.NotFound("Book")
	case dberr.IsUniqueViolation(err):
		return nil, apperr.DuplicateRating("You have already rated this book")
	default:
		return nil, dberr.Wrap(err, "mutate_ratings")
	}
}
