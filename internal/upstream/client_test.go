// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

package upstream_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novagate/account-portal/internal/platform/ctxutil"
	"github.com/novagate/account-portal/internal/upstream"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

/*
TestClient_AttachesCredentialVerbatim verifies that the context credential is
forwarded as a bearer header without transformation, and that anonymous
requests carry no Authorization header at all.
*/
func TestClient_AttachesCredentialVerbatim(t *testing.T) {
	var gotAuthorization string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		gotAuthorization = request.Header.Get("Authorization")
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"status":true,"code":200,"data":{}}`))
	}))
	defer server.Close()

	client := upstream.New(server.URL, testLogger())

	// Authenticated call
	ctx := ctxutil.WithCredential(context.Background(), "opaque.token-123")
	_, err := client.Get(ctx, "/api/v2/auth/getProfile", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer opaque.token-123", gotAuthorization)

	// Anonymous call
	_, err = client.Get(context.Background(), "/api/v2/captcha", nil)
	require.NoError(t, err)
	assert.Empty(t, gotAuthorization)
}

/*
TestClient_ApplicationErrorIsData verifies the two-tier failure taxonomy:
a non-200 envelope code is returned as data, never as a Go error.
*/
func TestClient_ApplicationErrorIsData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"status":false,"code":422,"errors":{"en":"Username taken","vi":"Tên đăng nhập đã tồn tại"}}`))
	}))
	defer server.Close()

	client := upstream.New(server.URL, testLogger())

	envelope, err := client.PostJSON(context.Background(), "/api/v2/auth/login", map[string]string{})
	require.NoError(t, err)
	require.NotNil(t, envelope)

	assert.False(t, envelope.OK())
	assert.Equal(t, 422, envelope.Code)
	require.NotNil(t, envelope.Errors)
	assert.Equal(t, "Tên đăng nhập đã tồn tại", envelope.Errors.VI)

	appErr := envelope.AppError()
	require.NotNil(t, appErr)
	assert.Equal(t, 422, appErr.Code)
	assert.Equal(t, http.StatusOK, appErr.HTTPStatus)
}

/*
TestClient_TransportErrorIsError verifies that an unreachable upstream
surfaces as a Go error with no envelope.
*/
func TestClient_TransportErrorIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := upstream.New(server.URL, testLogger())

	envelope, err := client.Get(context.Background(), "/api/v2/auth/getProfile", nil)
	assert.Error(t, err)
	assert.Nil(t, envelope)
}

/*
TestClient_SingleRejectionForwarded verifies that the first 401 for a
credential is forwarded as an application error without the revocation
sentinel: no automatic re-authentication, no session teardown yet.
*/
func TestClient_SingleRejectionForwarded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
		_, _ = writer.Write([]byte(`{"status":false,"code":401,"errors":{"en":"Unauthenticated","vi":"Chưa xác thực"}}`))
	}))
	defer server.Close()

	client := upstream.New(server.URL, testLogger())
	ctx := ctxutil.WithCredential(context.Background(), "stale-token")

	envelope, err := client.Get(ctx, "/api/v2/auth/getProfile", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, envelope.Code)
}

/*
TestClient_SecondConsecutiveRejectionRevokes verifies that two consecutive
401s for the same credential, across independent requests, surface
[upstream.ErrCredentialRevoked] so the caller clears the local session.
*/
func TestClient_SecondConsecutiveRejectionRevokes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
		_, _ = writer.Write([]byte(`{"status":false,"code":401,"errors":{"en":"Unauthenticated","vi":"Chưa xác thực"}}`))
	}))
	defer server.Close()

	client := upstream.New(server.URL, testLogger())
	ctx := ctxutil.WithCredential(context.Background(), "stale-token")

	_, err := client.Get(ctx, "/api/v2/auth/getProfile", nil)
	require.NoError(t, err)

	envelope, err := client.Get(ctx, "/api/v2/userActivityLogs", nil)
	assert.ErrorIs(t, err, upstream.ErrCredentialRevoked)
	require.NotNil(t, envelope)
	assert.Equal(t, http.StatusUnauthorized, envelope.Code)
}

/*
TestClient_SuccessResetsRejectionMarker verifies that any non-401 completion
between two 401s resets the consecutive counter.
*/
func TestClient_SuccessResetsRejectionMarker(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		calls++
		writer.Header().Set("Content-Type", "application/json")
		if calls == 2 {
			_, _ = writer.Write([]byte(`{"status":true,"code":200,"data":{}}`))
			return
		}
		writer.WriteHeader(http.StatusUnauthorized)
		_, _ = writer.Write([]byte(`{"status":false,"code":401,"errors":{"en":"Unauthenticated","vi":"Chưa xác thực"}}`))
	}))
	defer server.Close()

	client := upstream.New(server.URL, testLogger())
	ctx := ctxutil.WithCredential(context.Background(), "flaky-token")

	_, err := client.Get(ctx, "/a", nil)
	require.NoError(t, err)

	_, err = client.Get(ctx, "/b", nil)
	require.NoError(t, err)

	// Third call is a 401 again, but the marker was reset by the success.
	_, err = client.Get(ctx, "/c", nil)
	assert.NoError(t, err)
}

/*
TestClient_RevocationTracksPerCredential verifies that rejection markers are
independent between credentials.
*/
func TestClient_RevocationTracksPerCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
		_, _ = writer.Write([]byte(`{"status":false,"code":401,"errors":{"en":"Unauthenticated","vi":"Chưa xác thực"}}`))
	}))
	defer server.Close()

	client := upstream.New(server.URL, testLogger())
	ctxA := ctxutil.WithCredential(context.Background(), "token-a")
	ctxB := ctxutil.WithCredential(context.Background(), "token-b")

	_, err := client.Get(ctxA, "/x", nil)
	require.NoError(t, err)

	// First 401 for a different credential: not a revocation.
	_, err = client.Get(ctxB, "/x", nil)
	assert.NoError(t, err)

	// Second 401 for the original credential: revoked.
	_, err = client.Get(ctxA, "/x", nil)
	assert.ErrorIs(t, err, upstream.ErrCredentialRevoked)
}

/*
TestClient_EmptyBody401 verifies that a 401 with an undecodable body still
yields a well-formed envelope.
*/
func TestClient_EmptyBody401(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := upstream.New(server.URL, testLogger())

	envelope, err := client.Get(context.Background(), "/api/v2/auth/getProfile", nil)
	require.NoError(t, err)
	require.NotNil(t, envelope)
	assert.Equal(t, http.StatusUnauthorized, envelope.Code)
	require.NotNil(t, envelope.Errors)
	assert.NotEmpty(t, envelope.Errors.VI)
}

/*
TestClient_FetchImage verifies the raw binary path used for captcha blobs.
*/
func TestClient_FetchImage(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "image/png")
		_, _ = writer.Write(payload)
	}))
	defer server.Close()

	client := upstream.New(server.URL, testLogger())

	image, contentType, err := client.FetchImage(context.Background(), "/api/v2/captcha")
	require.NoError(t, err)
	assert.Equal(t, payload, image)
	assert.Equal(t, "image/png", contentType)
}

/*
TestClient_FetchImage_Failure verifies that a non-2xx answer is a fetch
failure rather than an empty image.
*/
func TestClient_FetchImage_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := upstream.New(server.URL, testLogger())

	image, _, err := client.FetchImage(context.Background(), "/api/v2/captcha")
	assert.Error(t, err)
	assert.Nil(t, image)
}
