// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

/*
Package session persists the opaque bearer credential across page loads.

The credential lives in a browser cookie named "access_token", scoped to the
deployment's cookie domain with path "/". The portal never parses or inspects
the token; the upstream account API is the sole judge of its validity, and no
expiry is read client-side.

# Lifecycle

A credential exists from successful login/registration until explicit logout
or upstream rejection. At most one credential is active per browser profile;
setting a new one silently replaces the old. Clearing the cookie and
redirecting to the login entry point are two separate caller steps; the
store never redirects, so teardown paths can skip navigation.
*/
package session

import (
	"net/http"

	"github.com/novagate/account-portal/internal/platform/constants"
)

// Store reads and writes the credential cookie.
//
// It is a stateless value object; all state lives in the browser cookie jar.
type Store struct {
	domain string
	secure bool
}

// NewStore constructs a [Store] for the given cookie domain.
// secure should be false only for localhost deployments.
func NewStore(domain string, secure bool) *Store {
	return &Store{domain: domain, secure: secure}
}

// Get returns the current credential, or false when none is stored.
func (s *Store) Get(request *http.Request) (string, bool) {
	cookie, err := request.Cookie(constants.AccessTokenCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Set persists the credential, replacing any previous one.
//
// No Max-Age is set: the cookie is session-scoped and the upstream decides
// when the token itself stops working.
func (s *Store) Set(writer http.ResponseWriter, token string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    token,
		Path:     constants.AccessTokenCookiePath,
		Domain:   s.domain,
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear removes the credential. It is idempotent: clearing an absent
// credential is a no-op from the browser's point of view.
//
// Callers that log the user out must follow up with their own redirect to
// the login entry point; the two steps are intentionally never merged.
func (s *Store) Clear(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    "",
		Path:     constants.AccessTokenCookiePath,
		Domain:   s.domain,
		MaxAge:   -1,
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
