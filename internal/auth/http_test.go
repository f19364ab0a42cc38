// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

package auth_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novagate/account-portal/internal/auth"
	"github.com/novagate/account-portal/internal/session"
	"github.com/novagate/account-portal/internal/upstream"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testHarness wires a real handler chain against a scripted upstream.
type testHarness struct {
	portal   *httptest.Server
	upstream *httptest.Server
	hits     *int
}

func newHarness(t *testing.T, upstreamHandler http.HandlerFunc) *testHarness {
	t.Helper()

	hits := 0
	upstreamServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		hits++
		upstreamHandler(writer, request)
	}))
	t.Cleanup(upstreamServer.Close)

	gateway := upstream.New(upstreamServer.URL, testLogger())
	sessions := session.NewStore("localhost", false)
	service := auth.NewService(auth.NewClient(gateway), testLogger())
	handler := auth.NewHandler(service, sessions)

	portal := httptest.NewServer(handler.Routes())
	t.Cleanup(portal.Close)

	return &testHarness{portal: portal, upstream: upstreamServer, hits: &hits}
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()

	response, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = response.Body.Close() })
	return response
}

func decodeEnvelope(t *testing.T, response *http.Response) map[string]interface{} {
	t.Helper()

	payload := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(response.Body).Decode(&payload))
	return payload
}

func sessionCookie(response *http.Response) *http.Cookie {
	for _, cookie := range response.Cookies() {
		if cookie.Name == "access_token" {
			return cookie
		}
	}
	return nil
}

/*
TestLogin_Success verifies the happy path: the upstream token lands in the
cookie, the user object in the body, and the token itself never does.
*/
func TestLogin_Success(t *testing.T) {
	harness := newHarness(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/v2/auth/login", request.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(request.Body).Decode(&body))
		assert.Equal(t, "nguyenan", body["username"])

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"status":true,"code":200,"data":{"user":{"id":"u-1","username":"nguyenan"},"token":"fresh-bearer-token"}}`))
	})

	response := postJSON(t, harness.portal.URL+"/login", `{"username":"nguyenan","password":"Matkhau1!"}`)
	assert.Equal(t, http.StatusOK, response.StatusCode)

	cookie := sessionCookie(response)
	require.NotNil(t, cookie)
	assert.Equal(t, "fresh-bearer-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)

	envelope := decodeEnvelope(t, response)
	assert.EqualValues(t, 200, envelope["code"])
	assert.NotContains(t, envelope, "errors")

	raw, err := json.Marshal(envelope["data"])
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "fresh-bearer-token")
}

/*
TestLogin_UpstreamRejection verifies that a rejected login relays the
upstream envelope over HTTP 200 and sets no cookie.
*/
func TestLogin_UpstreamRejection(t *testing.T) {
	harness := newHarness(t, func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"status":false,"code":401,"errors":{"en":"Wrong credentials","vi":"Sai thông tin đăng nhập"}}`))
	})

	response := postJSON(t, harness.portal.URL+"/login", `{"username":"nguyenan","password":"Matkhau1!"}`)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Nil(t, sessionCookie(response))

	envelope := decodeEnvelope(t, response)
	assert.EqualValues(t, 401, envelope["code"])
}

/*
TestLogin_ValidationShortCircuits verifies that an empty form never reaches
the upstream.
*/
func TestLogin_ValidationShortCircuits(t *testing.T) {
	harness := newHarness(t, func(writer http.ResponseWriter, request *http.Request) {
		t.Fatal("upstream must not be called")
	})

	response := postJSON(t, harness.portal.URL+"/login", `{"username":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	assert.Zero(t, *harness.hits)
}

/*
TestLogin_LengthRulesShortCircuit verifies the sign-in form's length schema:
a username under 4 characters or a password under 8 is rejected locally and
no upstream login call is issued.
*/
func TestLogin_LengthRulesShortCircuit(t *testing.T) {
	harness := newHarness(t, func(writer http.ResponseWriter, request *http.Request) {
		t.Fatal("upstream must not be called")
	})

	testCases := []struct {
		name string
		body string
	}{
		{name: "short username", body: `{"username":"ab","password":"Matkhau1!"}`},
		{name: "short password", body: `{"username":"nguyenan","password":"Mk1!"}`},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			response := postJSON(t, harness.portal.URL+"/login", testCase.body)
			assert.Equal(t, http.StatusBadRequest, response.StatusCode)
			assert.Zero(t, *harness.hits)

			envelope := decodeEnvelope(t, response)
			details, ok := envelope["details"].([]interface{})
			require.True(t, ok)
			assert.Len(t, details, 1)
		})
	}
}

/*
TestCheckUsername verifies the availability probe, including the local
schema gate in front of it.
*/
func TestCheckUsername(t *testing.T) {
	harness := newHarness(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/v2/auth/register/checkUsername", request.URL.Path)
		assert.Equal(t, "nguyenan", request.URL.Query().Get("username"))

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"status":true,"code":200}`))
	})

	// Too-short usernames are rejected locally: zero upstream hits.
	response, err := http.Get(harness.portal.URL + "/register/check-username?username=ab")
	require.NoError(t, err)
	defer response.Body.Close()
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	assert.Zero(t, *harness.hits)

	// Valid usernames hit the upstream probe.
	response, err = http.Get(harness.portal.URL + "/register/check-username?username=nguyenan")
	require.NoError(t, err)
	defer response.Body.Close()
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, 1, *harness.hits)
}

/*
TestSendOTP_NormalizesPhone verifies that the dial string is canonicalized
before validation and dispatch.
*/
func TestSendOTP_NormalizesPhone(t *testing.T) {
	var gotPhone string
	harness := newHarness(t, func(writer http.ResponseWriter, request *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(request.Body).Decode(&body))
		gotPhone = body["phone_number"]

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"status":true,"code":200}`))
	})

	response := postJSON(t, harness.portal.URL+"/register/send-otp", `{"phone_number":"+84 90 123-4567"}`)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "+84901234567", gotPhone)
}

/*
TestRegister_ValidationShortCircuits verifies that an invalid sign-up form
is rejected with field details and zero upstream calls.
*/
func TestRegister_ValidationShortCircuits(t *testing.T) {
	harness := newHarness(t, func(writer http.ResponseWriter, request *http.Request) {
		t.Fatal("upstream must not be called")
	})

	body := `{
		"full_name": "Nguyễn Văn An",
		"username": "ab",
		"password": "Matkhau1!",
		"password_confirmation": "Matkhau2!",
		"phone": "0901234567",
		"dob": "1990-05-20",
		"gender": "male",
		"address": "12 Lý Thường Kiệt, Hà Nội",
		"email": "an@novagate.studio",
		"otp": "A1B2C3"
	}`

	response := postJSON(t, harness.portal.URL+"/register", body)
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	assert.Zero(t, *harness.hits)

	envelope := decodeEnvelope(t, response)
	details, ok := envelope["details"].([]interface{})
	require.True(t, ok)

	// Short username plus mismatched confirmation.
	assert.Len(t, details, 2)
}

/*
TestRegister_Success verifies the multipart dispatch and the auto-login
cookie on acceptance.
*/
func TestRegister_Success(t *testing.T) {
	harness := newHarness(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/v2/auth/register", request.URL.Path)
		assert.Contains(t, request.Header.Get("Content-Type"), "multipart/form-data")

		require.NoError(t, request.ParseMultipartForm(1<<20))
		assert.Equal(t, "nguyenan", request.FormValue("username"))
		assert.Equal(t, "Nguyễn Văn An", request.FormValue("full_name"))
		assert.Equal(t, "A1B2C3", request.FormValue("otp"))

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"status":true,"code":200,"data":{"user":{"id":"u-2","username":"nguyenan"},"token":"register-token"}}`))
	})

	body := `{
		"full_name": "Nguyễn   Văn An",
		"username": "nguyenan",
		"password": "Matkhau1!",
		"password_confirmation": "Matkhau1!",
		"phone": "0901234567",
		"dob": "1990-05-20",
		"gender": "male",
		"address": "12 Lý Thường Kiệt, Hà Nội",
		"email": "an@novagate.studio",
		"otp": "a1b2c3"
	}`

	response := postJSON(t, harness.portal.URL+"/register", body)
	assert.Equal(t, http.StatusOK, response.StatusCode)

	cookie := sessionCookie(response)
	require.NotNil(t, cookie)
	assert.Equal(t, "register-token", cookie.Value)
}

/*
TestLogout clears the cookie without touching the upstream. The redirect to
the login entry point stays a separate frontend step.
*/
func TestLogout(t *testing.T) {
	harness := newHarness(t, func(writer http.ResponseWriter, request *http.Request) {
		t.Fatal("upstream must not be called")
	})

	response := postJSON(t, harness.portal.URL+"/logout", ``)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Zero(t, *harness.hits)

	cookie := sessionCookie(response)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}
