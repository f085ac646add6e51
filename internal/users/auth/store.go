// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// # User Data Access

// UserRepository defines the data access contract for accounts.
type UserRepository interface {

	/*
		FindByEmail returns the account with the given (normalized) email.

		Parameters:
		  - ctx: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: NOT_FOUND or storage failures
	*/
	FindByEmail(ctx context.Context, email string) (*User, error)

	/*
		Create persists a new account.

		Parameters:
		  - ctx: context.Context
		  - user: *User

		Returns:
		  - error: CONFLICT when the email is taken, or storage failures
	*/
	Create(ctx context.Context, user *User) error
}
