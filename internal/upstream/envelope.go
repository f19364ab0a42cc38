// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

package upstream

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/novagate/account-portal/internal/platform/apperr"
)

// Envelope is the response shape of every upstream account API endpoint:
// {status, message, code, data, errors:{en,vi}}.
//
// A non-200 Code is an application error: it is returned as data, never as a
// Go error, and the gateway performs no interpretation of it. Callers must
// inspect [Envelope.OK] before touching Data.
type Envelope struct {
	Status bool `json:"status"`
	Code   int  `json:"code"`

	// Message is either the literal string "error" or a localized pair;
	// kept raw because the portal never reads it.
	Message json.RawMessage `json:"message,omitempty"`

	// Data is decoded lazily by the caller via [Envelope.DecodeData].
	Data json.RawMessage `json:"data,omitempty"`

	// Errors carries the localized user-facing message on failure.
	Errors *apperr.Localized `json:"errors,omitempty"`
}

// OK reports whether the upstream accepted the operation.
func (e *Envelope) OK() bool {
	return e.Code == http.StatusOK
}

// DecodeData unmarshals the envelope's data payload into target.
func (e *Envelope) DecodeData(target interface{}) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("upstream: envelope has no data payload")
	}
	if err := json.Unmarshal(e.Data, target); err != nil {
		return fmt.Errorf("upstream: decode data payload: %w", err)
	}
	return nil
}

// AppError converts a rejected envelope into an [*apperr.AppError] relaying
// the upstream code and localized message verbatim. It returns nil when the
// envelope reports success.
func (e *Envelope) AppError() *apperr.AppError {
	if e.OK() {
		return nil
	}
	return apperr.Upstream(e.Code, e.Errors)
}
