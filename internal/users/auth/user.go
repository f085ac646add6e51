// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements account signup and login.

Accounts are identified by email. Login returns a signed RS256 access token
whose subject is the account ID; that ID becomes the owner of the books the
account creates and the rater of the grades it files.
*/
package auth

import (
	"strings"
	"time"

	"github.com/taibuivan/bookshelf/internal/platform/sec"
)

// # Domain Entities

// User is a registered account.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Role         sec.UserRole `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// # Field Identifiers

const (
	FieldEmail    = "email"
	FieldPassword = "password"
)

// # Constraints

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt ignores anything longer
	maxEmailLen    = 320
)

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
