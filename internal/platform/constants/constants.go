// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

/*
Package constants provides centralized, immutable values for the entire portal.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Upstream: Timeouts and paths for the remote account API.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Session: Credential cookie configuration.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "novagate-account-portal"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Upstream Account API

const (
	// UpstreamRequestTimeout bounds a single call to the remote account API.
	// No retries exist, so this is also the worst-case wait for a page action.
	UpstreamRequestTimeout = 15 * time.Second

	// UpstreamDialTimeout bounds establishing a TCP connection upstream.
	UpstreamDialTimeout = 5 * time.Second

	// UpstreamMaxIdleConns caps pooled connections towards the upstream host.
	UpstreamMaxIdleConns = 16

	// UpstreamIdleConnTimeout recycles idle upstream connections.
	UpstreamIdleConnTimeout = 90 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 100

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Session

const (
	// AccessTokenCookieName is the cookie that stores the opaque bearer credential.
	AccessTokenCookieName = "access_token"

	// AccessTokenCookiePath scopes the credential cookie to the whole site.
	AccessTokenCookiePath = "/"
)

// # Verification Flows

const (
	// FlowTTL is how long an open verification flow (and its challenge) is kept.
	FlowTTL = 10 * time.Minute

	// FlowCleanupInterval is how often expired flows are swept from memory.
	FlowCleanupInterval = 1 * time.Minute

	// OTPLength is the exact length of one-time codes entered by the user.
	OTPLength = 6
)

// # Profile Cache

const (
	// ProfileCacheTTL bounds how long a cached profile may be served.
	// Every authenticated view refreshes on mount, so this is a safety net.
	ProfileCacheTTL = 5 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderOrigin        = "Origin"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderAuthorization = "Authorization"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixProfile = "portal:profile:"
	RedisPrefixFlow    = "portal:flow:"
	RedisPrefixSubmit  = "portal:flow_submit:"
)
