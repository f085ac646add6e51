// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/constants"
	"github.com/taibuivan/bookshelf/internal/platform/ctxutil"
	"github.com/taibuivan/bookshelf/internal/platform/sec"
	"github.com/taibuivan/bookshelf/internal/platform/validate"
	"github.com/taibuivan/bookshelf/pkg/uuid"
)

// # Contracts & Types

// TokenProvider issues signed access tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given account.
	GenerateAccessToken(userID, email, role string, timeToLive time.Duration) (string, error)
}

// Service implements the account use cases.
type Service struct {
	users  UserRepository
	tokens TokenProvider
	ttl    time.Duration
}

// NewService constructs a [Service]. Tokens live for [constants.AccessTokenTTL].
func NewService(users UserRepository, tokens TokenProvider) *Service {
	return &Service{users: users, tokens: tokens, ttl: constants.AccessTokenTTL}
}

// # Signup

/*
Signup validates the credentials, hashes the password and stores the account.

Parameters:
  - ctx: context.Context
  - email: string
  - password: string

Returns:
  - *User: The created account
  - error: VALIDATION_ERROR, CONFLICT (email taken) or storage failures
*/
func (service *Service) Signup(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).
		MaxLen(FieldEmail, email, maxEmailLen).
		Email(FieldEmail, email).
		Required(FieldPassword, password).
		MinLen(FieldPassword, password, minPasswordLen).
		Custom(FieldPassword, len(password) > maxPasswordLen, fmt.Sprintf("Maximum %d bytes", maxPasswordLen))
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.users.FindByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	} else if !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, err
	}

	hashed, err := sec.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth: hash password: %w", err))
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashed,
		Role:         sec.RoleMember,
	}

	// The unique index still decides a race between two identical signups.
	if err := service.users.Create(ctx, user); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).Info("user_signed_up", slog.String("user_id", user.ID))
	return user, nil
}

// # Login

// Session is the result of a successful login.
type Session struct {
	UserID string
	Token  string
}

/*
Login checks the credentials and issues an access token.

Unknown emails and wrong passwords produce the same error so that accounts
cannot be enumerated.

Returns:
  - *Session: The account ID and its signed token
  - error: UNAUTHORIZED or internal failures
*/
func (service *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := service.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			sec.BurnPasswordCheck(password)
			return nil, apperr.Unauthorized("Invalid login credentials")
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	role := user.Role
	if !role.Valid() {
		role = sec.RoleMember
	}

	token, err := service.tokens.GenerateAccessToken(user.ID, user.Email, string(role), service.ttl)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth: sign token: %w", err))
	}

	ctxutil.GetLogger(ctx).Info("user_logged_in", slog.String("user_id", user.ID))
	return &Session{UserID: user.ID, Token: token}, nil
}
