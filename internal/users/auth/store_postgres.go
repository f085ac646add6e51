// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/database/schema"
	"github.com/taibuivan/bookshelf/internal/platform/dberr"
)

// PostgresUserRepository implements [UserRepository] on users.account.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a PostgreSQL [UserRepository].
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

var account = schema.UserAccount

/*
Create inserts the account and fills its timestamps from the database clock.

Returns:
  - error: CONFLICT when the email is already registered
*/
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING %s, %s`,
		account.Table, account.ID, account.Email, account.Password, account.Role, account.CreatedAt, account.UpdatedAt,
		account.CreatedAt, account.UpdatedAt,
	)

	err := repository.pool.QueryRow(ctx, query, user.ID, user.Email, user.PasswordHash, user.Role).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if dberr.IsUniqueViolation(err) {
		return apperr.Conflict("Email is already registered")
	}
	return dberr.Wrap(err, "create_user")
}

// FindByEmail matches case-insensitively, mirroring the unique index.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s::text, %s, %s, %s, %s, %s
		FROM %s
		WHERE LOWER(%s) = LOWER($1)`,
		account.ID, account.Email, account.Password, account.Role, account.CreatedAt, account.UpdatedAt,
		account.Table,
		account.Email,
	)

	user := &User{}
	err := repository.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if dberr.IsNoRows(err) {
		return nil, apperr.NotFound("User")
	}
	if err != nil {
		return nil, dberr.Wrap(err, "find_user_by_email")
	}

	return user, nil
}
