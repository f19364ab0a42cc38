// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novagate/account-portal/internal/session"
)

/*
TestStore_SetGet verifies the credential round-trip through the cookie.
*/
func TestStore_SetGet(t *testing.T) {
	store := session.NewStore(".novagate.studio", true)

	recorder := httptest.NewRecorder()
	store.Set(recorder, "opaque-token-value")

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)

	cookie := cookies[0]
	assert.Equal(t, "access_token", cookie.Name)
	assert.Equal(t, "opaque-token-value", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, ".novagate.studio", cookie.Domain)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)

	// The cookie is session-scoped: no Max-Age, no Expires.
	assert.Equal(t, 0, cookie.MaxAge)
	assert.True(t, cookie.Expires.IsZero())

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(cookie)

	token, ok := store.Get(request)
	assert.True(t, ok)
	assert.Equal(t, "opaque-token-value", token)
}

/*
TestStore_Get_Absent verifies behavior when no credential is stored.
*/
func TestStore_Get_Absent(t *testing.T) {
	store := session.NewStore("localhost", false)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	token, ok := store.Get(request)

	assert.False(t, ok)
	assert.Empty(t, token)
}

/*
TestStore_Get_EmptyValue treats an empty cookie as logged out.
*/
func TestStore_Get_EmptyValue(t *testing.T) {
	store := session.NewStore("localhost", false)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: "access_token", Value: ""})

	_, ok := store.Get(request)
	assert.False(t, ok)
}

/*
TestStore_Set_Replaces verifies that a new login replaces the previous
credential: at most one is active per browser profile.
*/
func TestStore_Set_Replaces(t *testing.T) {
	store := session.NewStore("localhost", false)

	recorder := httptest.NewRecorder()
	store.Set(recorder, "first-token")
	store.Set(recorder, "second-token")

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 2)

	// The browser keeps the last Set-Cookie for the same name.
	assert.Equal(t, "second-token", cookies[1].Value)
}

/*
TestStore_Clear verifies teardown and its idempotency.
*/
func TestStore_Clear(t *testing.T) {
	store := session.NewStore("localhost", false)

	recorder := httptest.NewRecorder()
	store.Clear(recorder)
	store.Clear(recorder)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 2)

	for _, cookie := range cookies {
		assert.Equal(t, "access_token", cookie.Name)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
	}
}
