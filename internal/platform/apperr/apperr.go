// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

/*
Package apperr defines the centralized error handling framework for the portal.

It implements the two-tier taxonomy the portal lives by:

  - Application errors: the upstream account API answered with a structured
    envelope whose code is not 200. These are data, never transport failures,
    and carry a localized (en/vi) message for the user.
  - Transport errors: the upstream could not be reached or answered garbage.
    These surface as a generic localized message and are logged with their cause.

Every error that leaves the service layer is wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"net/http"
)

// Localized is a message pair mirroring the upstream `errors` object.
type Localized struct {
	EN string `json:"en"`
	VI string `json:"vi"`
}

// # Canonical Messages

var (
	// GenericFailure is the catch-all toast for transport-level failures.
	GenericFailure = Localized{
		EN: "Something went wrong. Please try again.",
		VI: "Có lỗi xảy ra, vui lòng thử lại.",
	}

	// ChallengeLoadFailure is shown when a captcha challenge cannot be fetched.
	ChallengeLoadFailure = Localized{
		EN: "Unable to load the verification code. Please try again.",
		VI: "Không thể tải mã xác thực. Vui lòng thử lại.",
	}

	// ChallengeMismatch is shown when the captcha answer is rejected.
	ChallengeMismatch = Localized{
		EN: "The verification code is incorrect. Please try again.",
		VI: "Mã xác thực không đúng. Vui lòng thử lại.",
	}

	// SessionExpired is shown when the credential has been rejected twice.
	SessionExpired = Localized{
		EN: "Your session has expired. Please sign in again.",
		VI: "Phiên đăng nhập đã hết hạn. Vui lòng đăng nhập lại.",
	}

	// ValidationFailure heads a response carrying per-field details.
	ValidationFailure = Localized{
		EN: "Some fields are invalid.",
		VI: "Một số trường không hợp lệ.",
	}
)

// AppError is the canonical error type for the account portal.
//
// It carries the envelope code relayed to the frontend, an HTTP status, a
// localized message pair, and an optional slice of field-level errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details.
type AppError struct {
	// Code is the envelope code (200 means success and never appears here).
	// Application errors keep the upstream's code verbatim.
	Code int `json:"code"`
	// Errors is the localized message pair shown to the user.
	Errors Localized `json:"errors"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for validation responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the localized description of the failure.
	Message Localized `json:"message"`
}

// Error implements the error interface. It returns the English message.
func (e *AppError) Error() string { return e.Errors.EN }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// ValidationError creates a 400 [AppError] with per-field details.
// No network call may be issued once validation has failed.
func ValidationError(details ...FieldError) *AppError {
	return &AppError{
		Code:       http.StatusBadRequest,
		Errors:     ValidationFailure,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// InvalidJSON is returned when a request body cannot be decoded.
func InvalidJSON() *AppError {
	return &AppError{
		Code:       http.StatusBadRequest,
		Errors:     Localized{EN: "Invalid request payload.", VI: "Dữ liệu gửi lên không hợp lệ."},
		HTTPStatus: http.StatusBadRequest,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg Localized) *AppError {
	return &AppError{
		Code:       http.StatusUnauthorized,
		Errors:     msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NotFound creates a 404 [AppError].
func NotFound(msg Localized) *AppError {
	return &AppError{
		Code:       http.StatusNotFound,
		Errors:     msg,
		HTTPStatus: http.StatusNotFound,
	}
}

// Conflict creates a 409 [AppError]. Used for duplicate submissions that
// arrive while a verification flow is already submitting.
func Conflict(msg Localized) *AppError {
	return &AppError{
		Code:       http.StatusConflict,
		Errors:     msg,
		HTTPStatus: http.StatusConflict,
	}
}

// # Relayed & Server Errors

// Upstream wraps a non-200 envelope from the remote account API.
//
// The upstream code and localized messages pass through verbatim; the portal
// performs no interpretation of the body. Responses relaying an application
// error stay HTTP 200 so the frontend reads one envelope shape.
func Upstream(code int, errs *Localized) *AppError {
	msg := GenericFailure
	if errs != nil && (errs.EN != "" || errs.VI != "") {
		msg = *errs
	}
	return &AppError{
		Code:       code,
		Errors:     msg,
		HTTPStatus: http.StatusOK,
	}
}

// Transport creates a 502 [AppError] wrapping a network or decoding failure.
// The cause is stored for logging but is never sent to the client.
func Transport(cause error) *AppError {
	return &AppError{
		Code:       http.StatusBadGateway,
		Errors:     GenericFailure,
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       http.StatusInternalServerError,
		Errors:     GenericFailure,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsUnauthorized reports whether err represents a 401-class failure.
func IsUnauthorized(err error) bool {
	ae := As(err)
	return ae != nil && (ae.Code == http.StatusUnauthorized || ae.HTTPStatus == http.StatusUnauthorized)
}
