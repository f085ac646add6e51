// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr is the error vocabulary shared by the services and the HTTP layer.

Services return an [*AppError] for every failure a client can act on. The HTTP
layer maps it to a status and a JSON body; anything else becomes
INTERNAL_ERROR. Clients switch on Code, never on Message.
*/
package apperr

import (
	"errors"
	"net/http"
)

const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeDuplicateRating = "DUPLICATE_RATING"
	CodeTranscode       = "TRANSCODE_ERROR"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeStorage         = "STORAGE_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
)

// AppError carries everything needed to answer a failed request.
// Cause is for logs only and is never serialised.
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	HTTPStatus int          `json:"-"`
	Cause      error        `json:"-"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError names one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Cause }

func newError(code string, status int, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// NotFound reports "<resource> not found".
func NotFound(resource string) *AppError {
	return newError(CodeNotFound, http.StatusNotFound, resource+" not found")
}

func Unauthorized(message string) *AppError {
	return newError(CodeUnauthorized, http.StatusUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return newError(CodeForbidden, http.StatusForbidden, message)
}

func Conflict(message string) *AppError {
	return newError(CodeConflict, http.StatusConflict, message)
}

func ValidationError(message string, details ...FieldError) *AppError {
	err := newError(CodeValidation, http.StatusBadRequest, message)
	err.Details = details
	return err
}

// DuplicateRating is a 403: the caller may not rate the same book twice.
func DuplicateRating(message string) *AppError {
	return newError(CodeDuplicateRating, http.StatusForbidden, message)
}

// TranscodeFailed is a 422 for an upload that is not a decodable image.
func TranscodeFailed(message string, cause error) *AppError {
	err := newError(CodeTranscode, http.StatusUnprocessableEntity, message)
	err.Cause = cause
	return err
}

func TooManyRequests() *AppError {
	return newError(CodeTooManyRequests, http.StatusTooManyRequests, "Rate limit exceeded")
}

// Internal hides cause behind a generic message.
func Internal(cause error) *AppError {
	err := newError(CodeInternal, http.StatusInternalServerError, "An unexpected error occurred")
	err.Cause = cause
	return err
}

// Storage is a 500 for record or asset I/O. The cause is hidden like [Internal].
func Storage(cause error) *AppError {
	err := newError(CodeStorage, http.StatusInternalServerError, "Storage operation failed")
	err.Cause = cause
	return err
}

// As returns the first [*AppError] in err's chain, or nil.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func IsAppError(err error) bool {
	return As(err) != nil
}

// HasCode reports whether err's chain holds an [*AppError] with code.
func HasCode(err error, code string) bool {
	appErr := As(err)
	return appErr != nil && appErr.Code == code
}
