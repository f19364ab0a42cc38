// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

package profile

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/novagate/account-portal/internal/platform/constants"
)

// ErrNotCached is returned by stores when no profile is held for a key.
var ErrNotCached = errors.New("profile: not cached")

// CacheStore persists the per-session profile slot. Implementations exist
// for process memory and Redis.
type CacheStore interface {
	Get(ctx context.Context, key string) (*Profile, error)
	Set(ctx context.Context, key string, profile *Profile) error
	Delete(ctx context.Context, key string) error
}

// # In-Memory Store

type memoryEntry struct {
	profile  Profile
	storedAt time.Time
}

// MemoryStore keeps profile slots in a process-local map with TTL sweeping.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

// NewMemoryStore constructs a [MemoryStore] and starts its cleanup routine,
// which stops when the given context is cancelled.
func NewMemoryStore(ctx context.Context) *MemoryStore {
	store := &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     constants.ProfileCacheTTL,
	}

	go func() {
		ticker := time.NewTicker(constants.ProfileCacheTTL)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				store.sweep()
			case <-ctx.Done():
				return
			}
		}
	}()

	return store
}

// Get returns a copy of the cached profile or [ErrNotCached].
func (s *MemoryStore) Get(_ context.Context, key string) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || time.Since(entry.storedAt) > s.ttl {
		return nil, ErrNotCached
	}

	copied := entry.profile
	return &copied, nil
}

// Set replaces the slot wholesale.
func (s *MemoryStore) Set(_ context.Context, key string, profile *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{profile: *profile, storedAt: time.Now()}
	return nil
}

// Delete drops the slot. Absent keys are not an error.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// sweep removes expired entries.
func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.entries {
		if time.Since(entry.storedAt) > s.ttl {
			delete(s.entries, key)
		}
	}
}
