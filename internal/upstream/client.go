// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

/*
Package upstream implements the authenticated request gateway to the remote
account API.

Every outbound call reads the session credential from the request context
and, if present, attaches it as a bearer header. Absence of a credential is
not an error at this layer — unauthenticated calls pass through and the
upstream decides.

# Failure Semantics

Two tiers, never mixed:

  - Transport failures (network unreachable, malformed response) surface as
    Go errors. They are never retried automatically.
  - Application errors (envelope code != 200) are returned as data inside
    the [Envelope]; the gateway performs no interpretation of them.

A first 401 for a credential is recorded and forwarded — no automatic
re-authentication exists. A second consecutive 401 for the same credential
returns [ErrCredentialRevoked] so the caller clears the local session. Any
non-401 completion resets the marker.
*/
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/novagate/account-portal/internal/platform/apperr"
	"github.com/novagate/account-portal/internal/platform/constants"
	"github.com/novagate/account-portal/internal/platform/ctxutil"
)

// ErrCredentialRevoked signals that the upstream rejected the same credential
// twice in a row. The caller must clear the session cookie; the redirect to
// the login entry point stays a separate caller step.
var ErrCredentialRevoked = errors.New("upstream: credential rejected twice, local session must be cleared")

// maxBodyBytes bounds how much of an upstream response body is read.
const maxBodyBytes = 4 << 20

// # Gateway Client

// Client is the authenticated request gateway. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger

	// mu guards rejected: credential -> "one 401 already seen" marker.
	mu       sync.Mutex
	rejected map[string]bool
}

// New constructs a gateway client for the given base URL.
func New(baseURL string, logger *slog.Logger) *Client {
	transport := &http.Transport{
		DialContext:     (&net.Dialer{Timeout: constants.UpstreamDialTimeout}).DialContext,
		MaxIdleConns:    constants.UpstreamMaxIdleConns,
		IdleConnTimeout: constants.UpstreamIdleConnTimeout,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: transport,
			Timeout:   constants.UpstreamRequestTimeout,
		},
		log:      logger,
		rejected: make(map[string]bool),
	}
}

// # Request Methods

// Get issues a GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Envelope, error) {
	target := path
	if len(query) > 0 {
		target = path + "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, target, "", nil)
}

// PostJSON issues a POST request with a JSON body.
func (c *Client) PostJSON(ctx context.Context, path string, payload interface{}) (*Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("upstream: encode request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(body))
}

// PostMultipart issues a POST request with multipart form fields.
// The registration endpoint is the only consumer.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string) (*Envelope, error) {
	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("upstream: build multipart body: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("upstream: finalize multipart body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, writer.FormDataContentType(), &buffer)
}

// FetchImage issues a GET request for a raw binary payload (captcha images).
//
// Returns the bytes and the upstream Content-Type. Any non-2xx answer is a
// fetch failure: the caller's flow returns to Idle and may retry explicitly.
func (c *Client) FetchImage(ctx context.Context, path string) ([]byte, string, error) {
	request, err := c.newRequest(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, "", err
	}

	response, err := c.http.Do(request)
	if err != nil {
		return nil, "", fmt.Errorf("upstream: GET %s: %w", path, err)
	}
	defer response.Body.Close()

	c.track(ctx, response.StatusCode)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, "", fmt.Errorf("upstream: GET %s: unexpected status %d", path, response.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(response.Body, maxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("upstream: GET %s: read body: %w", path, err)
	}

	return payload, response.Header.Get("Content-Type"), nil
}

// # Core Transport

// newRequest builds an outbound request, attaching the credential verbatim
// when the context carries one.
func (c *Client) newRequest(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Request, error) {
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("upstream: build request %s %s: %w", method, path, err)
	}

	request.Header.Set("Accept", "application/json")
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}

	if token, ok := ctxutil.GetCredential(ctx); ok {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}

	return request, nil
}

// do executes the request and decodes the response envelope.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*Envelope, error) {
	request, err := c.newRequest(ctx, method, path, contentType, body)
	if err != nil {
		return nil, err
	}

	response, err := c.http.Do(request)
	if err != nil {
		return nil, fmt.Errorf("upstream: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(response.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("upstream: %s %s: read body: %w", method, path, err)
	}

	revoked := c.track(ctx, response.StatusCode)

	envelope := &Envelope{}
	if decodeErr := json.Unmarshal(raw, envelope); decodeErr != nil {
		if response.StatusCode == http.StatusUnauthorized {
			// Some upstream deployments answer 401 with an empty body.
			envelope = &Envelope{Code: http.StatusUnauthorized, Errors: &apperr.SessionExpired}
		} else {
			return nil, fmt.Errorf("upstream: %s %s: malformed response (status %d): %w", method, path, response.StatusCode, decodeErr)
		}
	}

	if envelope.Code == 0 {
		envelope.Code = response.StatusCode
	}

	if revoked {
		c.log.WarnContext(ctx, "upstream_credential_revoked",
			slog.String("method", method),
			slog.String("path", path),
		)
		return envelope, ErrCredentialRevoked
	}

	return envelope, nil
}

// # 401 Tracking

// track records the outcome of a call for the context's credential and
// reports whether this response is the second consecutive 401.
//
// Calls without a credential are never tracked: there is nothing local to
// clear when the upstream rejects an anonymous request.
func (c *Client) track(ctx context.Context, status int) bool {
	token, ok := ctxutil.GetCredential(ctx)
	if !ok {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if status != http.StatusUnauthorized {
		delete(c.rejected, token)
		return false
	}

	if c.rejected[token] {
		// Second consecutive rejection: the credential is dead.
		delete(c.rejected, token)
		return true
	}

	c.rejected[token] = true
	return false
}
