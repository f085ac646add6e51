// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package requestutil reads path parameters, JSON bodies and the caller's
// identity off an [http.Request].
package requestutil

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/ctxutil"
	"github.com/taibuivan/bookshelf/internal/platform/validate"
)

// maxJSONBytes bounds plain JSON bodies. Multipart uploads have their own limit.
const maxJSONBytes = 1 << 20

/*
DecodeJSON decodes a JSON object body into target.

An empty body, malformed JSON, trailing data or a body over 1 MiB all yield
[validate.ErrInvalidJSON]. Unknown fields are ignored.
*/
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(io.LimitReader(request.Body, maxJSONBytes))
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	if decoder.More() {
		return validate.ErrInvalidJSON
	}
	return nil
}

// ID returns the named chi path parameter.
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// RequiredUserID returns the caller's user ID or 401 for anonymous requests.
func RequiredUserID(request *http.Request) (string, error) {
	id, ok := ctxutil.UserID(request.Context())
	if !ok {
		return "", apperr.Unauthorized("Authentication required")
	}
	return id, nil
}

// IsBodyTooLarge reports whether err came from an [http.MaxBytesReader].
func IsBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}
