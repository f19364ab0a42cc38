// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

package profile

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"

	"github.com/novagate/account-portal/internal/platform/apperr"
	"github.com/novagate/account-portal/internal/upstream"
)

// Source fetches the profile from the upstream account API using the
// credential carried by the context. Implemented by the account client.
type Source interface {
	FetchProfile(ctx context.Context) (*Profile, error)
}

// Cache is the single mutable profile slot per session credential.
//
// # Semantics
//
//   - Refresh replaces the slot wholesale; there are no partial merges.
//   - Concurrent refreshes are not deduplicated: each issues its own request
//     and the last resolution wins, consistent with last-write-wins UI state.
//   - A 401-class failure clears the slot; an empty cache is equivalent to
//     the logged-out state.
type Cache struct {
	store  CacheStore
	source Source
	log    *slog.Logger
}

// NewCache constructs a [Cache].
func NewCache(store CacheStore, source Source, logger *slog.Logger) *Cache {
	return &Cache{store: store, source: source, log: logger}
}

// Get returns the cached profile, falling back to a refresh on a miss.
func (c *Cache) Get(ctx context.Context, credential string) (*Profile, error) {
	cached, err := c.store.Get(ctx, cacheKey(credential))
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrNotCached) {
		c.log.WarnContext(ctx, "profile_cache_read_failed", slog.Any("error", err))
	}
	return c.Refresh(ctx, credential)
}

// Refresh fetches the profile and replaces the cached slot wholesale.
//
// On a 401-class failure the slot is cleared and the error propagates so the
// caller can treat the session as logged out.
func (c *Cache) Refresh(ctx context.Context, credential string) (*Profile, error) {
	fetched, err := c.source.FetchProfile(ctx)
	if err != nil {
		if apperr.IsUnauthorized(err) || errors.Is(err, upstream.ErrCredentialRevoked) {
			c.Invalidate(ctx, credential)
		}
		return nil, err
	}

	if err := c.store.Set(ctx, cacheKey(credential), fetched); err != nil {
		// Cache write failure degrades to always-fresh fetches.
		c.log.WarnContext(ctx, "profile_cache_write_failed", slog.Any("error", err))
	}

	return fetched, nil
}

// Invalidate drops the cached slot for the credential.
func (c *Cache) Invalidate(ctx context.Context, credential string) {
	if err := c.store.Delete(ctx, cacheKey(credential)); err != nil {
		c.log.WarnContext(ctx, "profile_cache_invalidate_failed", slog.Any("error", err))
	}
}

// cacheKey derives the storage key from the credential. The raw bearer token
// never appears in Redis keys or logs.
func cacheKey(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:16])
}
