// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/sec"
	"github.com/taibuivan/bookshelf/internal/users/auth"
)

// memoryUsers is an in-process [auth.UserRepository].
type memoryUsers struct {
	mu      sync.Mutex
	byEmail map[string]*auth.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: map[string]*auth.User{}}
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	copied := *user
	return &copied, nil
}

func (m *memoryUsers) Create(_ context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[user.Email]; exists {
		return apperr.Conflict("Email is already registered")
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	m.byEmail[user.Email] = &copied
	return nil
}

// stubTokens records the last subject it signed for.
type stubTokens struct {
	subject string
	ttl     time.Duration
	err     error
}

func (s *stubTokens) GenerateAccessToken(userID, _, _ string, ttl time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.subject, s.ttl = userID, ttl
	return "signed." + userID, nil
}

/*
TestService_Signup covers validation, normalization and duplicates.
*/
func TestService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("stores_hashed_password", func(t *testing.T) {
		users := newMemoryUsers()
		service := auth.NewService(users, &stubTokens{})

		user, err := service.Signup(ctx, "  Reader@Example.com ", "correct-horse")
		require.NoError(t, err)

		assert.Equal(t, "reader@example.com", user.Email)
		assert.Equal(t, sec.RoleMember, user.Role)
		assert.NotEqual(t, "correct-horse", user.PasswordHash)
		assert.True(t, sec.CheckPasswordHash("correct-horse", user.PasswordHash))
	})

	t.Run("duplicate_email", func(t *testing.T) {
		service := auth.NewService(newMemoryUsers(), &stubTokens{})
		_, err := service.Signup(ctx, "reader@example.com", "correct-horse")
		require.NoError(t, err)

		_, err = service.Signup(ctx, "READER@example.com", "another-pass")
		assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
	})

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"missing_email", "", "correct-horse"},
		{"invalid_email", "not-an-email", "correct-horse"},
		{"short_password", "reader@example.com", "short"},
		{"overlong_password", "reader@example.com", string(bytes.Repeat([]byte("a"), 73))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := auth.NewService(newMemoryUsers(), &stubTokens{})
			_, err := service.Signup(ctx, tt.email, tt.password)
			assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
		})
	}
}

/*
TestService_Login covers success and the indistinguishable failures.
*/
func TestService_Login(t *testing.T) {
	ctx := context.Background()
	tokens := &stubTokens{}
	service := auth.NewService(newMemoryUsers(), tokens)

	user, err := service.Signup(ctx, "reader@example.com", "correct-horse")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		session, err := service.Login(ctx, "Reader@Example.com", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, user.ID, session.UserID)
		assert.Equal(t, "signed."+user.ID, session.Token)
		assert.Equal(t, user.ID, tokens.subject)
		assert.Equal(t, 24*time.Hour, tokens.ttl)
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := service.Login(ctx, "reader@example.com", "wrong-horse")
		assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
	})

	t.Run("unknown_email", func(t *testing.T) {
		_, err := service.Login(ctx, "ghost@example.com", "correct-horse")
		assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
	})

	t.Run("signing_failure", func(t *testing.T) {
		failing := auth.NewService(newMemoryUsers(), &stubTokens{err: errors.New("no key")})
		_, err := failing.Signup(ctx, "reader@example.com", "correct-horse")
		require.NoError(t, err)

		_, err = failing.Login(ctx, "reader@example.com", "correct-horse")
		assert.True(t, apperr.HasCode(err, apperr.CodeInternal))
	})
}

/*
TestHandler covers the signup and login endpoints end to end.
*/
func TestHandler(t *testing.T) {
	router := auth.NewHandler(auth.NewService(newMemoryUsers(), &stubTokens{})).Routes()

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := post("/signup", `{"email":"reader@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "User created", created.Message)

	assert.Equal(t, http.StatusConflict, post("/signup", `{"email":"reader@example.com","password":"correct-horse"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post("/signup", `{"email":`).Code)

	rec = post("/login", `{"email":"reader@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var session struct {
		UserID string `json:"user_id"`
		Token  string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.NotEmpty(t, session.UserID)
	assert.Equal(t, "signed."+session.UserID, session.Token)

	assert.Equal(t, http.StatusUnauthorized, post("/login", `{"email":"reader@example.com","password":"nope-nope"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post("/login", `{"email":"reader@example.com"}`).Code)
}
