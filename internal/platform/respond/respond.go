// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond writes JSON responses.
//
// Catalog reads return bare resources, mutations return a {message, data}
// envelope and every failure returns an [ErrorEnvelope] built from an
// [apperr.AppError].
package respond

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/ctxutil"
)

// SuccessEnvelope wraps operational payloads such as health reports.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// MessageEnvelope is returned by mutations.
type MessageEnvelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorEnvelope is the body of every non-2xx response.
type ErrorEnvelope struct {
	Error     string              `json:"error"`
	Code      string              `json:"code"`
	Details   []apperr.FieldError `json:"details,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

// JSON encodes payload with the given status.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// Data writes payload inside a [SuccessEnvelope].
func Data(writer http.ResponseWriter, statusCode int, payload any) {
	JSON(writer, statusCode, SuccessEnvelope{Data: payload})
}

// Message writes a [MessageEnvelope]. A nil data is omitted.
func Message(writer http.ResponseWriter, statusCode int, message string, data any) {
	JSON(writer, statusCode, MessageEnvelope{Message: message, Data: data})
}

// Error maps err to its HTTP status and writes an [ErrorEnvelope].
//
// Errors that are not an [apperr.AppError] become INTERNAL_ERROR and their
// text never reaches the client. Every 5xx is logged with its cause.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	ctx := request.Context()

	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		appError = apperr.Internal(err)
	}

	if appError.HTTPStatus >= http.StatusInternalServerError {
		ctxutil.GetLogger(ctx).ErrorContext(ctx, "request_failed",
			slog.String("code", appError.Code),
			slog.String("method", request.Method),
			slog.String("path", request.URL.Path),
			slog.Any("cause", appError.Cause),
		)
	}

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{
		Error:     appError.Message,
		Code:      appError.Code,
		Details:   appError.Details,
		RequestID: ctxutil.GetRequestID(ctx),
	})
}
