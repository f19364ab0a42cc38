// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/novagate/account-portal/internal/platform/ctxkey"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Session Credential

// WithCredential returns a new context carrying the opaque bearer credential.
//
// The credential is never parsed or inspected; it travels to the upstream
// gateway verbatim.
func WithCredential(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyCredential, token)
}

// GetCredential retrieves the credential from the [context.Context].
// The second return value reports whether a non-empty credential is present.
func GetCredential(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(ctxkey.KeyCredential).(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
