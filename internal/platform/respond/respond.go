// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

// Package respond provides HTTP response helpers used by all portal handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// The portal deliberately mirrors the upstream account API's envelope
// ({code, data, errors:{en,vi}}) so that the frontend parses exactly one
// response shape whether an answer originated here or was relayed upstream.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/novagate/account-portal/internal/platform/apperr"
	"github.com/novagate/account-portal/internal/platform/ctxutil"
	"github.com/novagate/account-portal/pkg/pagination"
)

// Envelope is the JSON envelope for every portal response.
type Envelope struct {
	Code    int                 `json:"code"`
	Data    interface{}         `json:"data,omitempty"`
	Meta    *pagination.Meta    `json:"meta,omitempty"`
	Errors  *apperr.Localized   `json:"errors,omitempty"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with data wrapped in the standard envelope.
func OK(writer http.ResponseWriter, data interface{}) {
	JSON(writer, http.StatusOK, Envelope{Code: http.StatusOK, Data: data})
}

// Paginated writes a 200 OK response with list data and a metadata block.
func Paginated(writer http.ResponseWriter, data interface{}, metadata pagination.Meta) {
	JSON(writer, http.StatusOK, Envelope{Code: http.StatusOK, Data: data, Meta: &metadata})
}

// Image writes raw image bytes with the upstream-provided content type.
// Used to proxy captcha challenges without re-encoding.
func Image(writer http.ResponseWriter, contentType string, payload []byte) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	writer.Header().Set("Content-Type", contentType)
	writer.Header().Set("Cache-Control", "no-store")
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write(payload)
}

// Error converts any Go error into a standardized JSON envelope.
//
// Relayed upstream application errors keep HTTP 200 with their original
// envelope code; transport and internal failures map to 5xx.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		// Unexpected internal error: log full details but hide them from the client for security.
		logger := getLoggerFromContext(request)
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", getRequestIDFromContext(request)),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side or upstream issues.
	if appError.HTTPStatus >= 500 {
		logger := getLoggerFromContext(request)
		logger.ErrorContext(request.Context(), "portal_server_error",
			slog.Int("code", appError.Code),
			slog.String("request_id", getRequestIDFromContext(request)),
			slog.Any("cause", appError.Cause),
		)
	}

	errs := appError.Errors
	JSON(writer, appError.HTTPStatus, Envelope{
		Code:    appError.Code,
		Errors:  &errs,
		Details: appError.Details,
	})
}

// getLoggerFromContext extracts the per-request logger.
func getLoggerFromContext(request *http.Request) *slog.Logger {
	return ctxutil.GetLogger(request.Context())
}

// getRequestIDFromContext extracts the X-Request-ID for log correlation.
func getRequestIDFromContext(request *http.Request) string {
	return ctxutil.GetRequestID(request.Context())
}
