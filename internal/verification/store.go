// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

package verification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/novagate/account-portal/internal/platform/constants"
)

// ErrNotFound is returned by stores when a flow does not exist or has expired.
var ErrNotFound = errors.New("verification: flow not found")

// Store persists flow records. Implementations exist for process memory and
// Redis; the registry treats both identically.
type Store interface {
	// Save upserts the flow record.
	Save(ctx context.Context, flow *Flow) error

	// Find returns the flow by ID, or [ErrNotFound].
	Find(ctx context.Context, id string) (*Flow, error)

	// Delete removes a flow. Deleting an absent flow is not an error.
	Delete(ctx context.Context, id string) error

	// AcquireSubmit takes the flow's single in-flight submission slot.
	// It returns false when a submission is already running.
	AcquireSubmit(ctx context.Context, id string) (bool, error)

	// ReleaseSubmit frees the in-flight slot.
	ReleaseSubmit(ctx context.Context, id string) error
}

// # In-Memory Store

// MemoryStore keeps flows in a process-local map with TTL sweeping.
// The default when no Redis URL is configured; flows are then node-local,
// so multi-replica deployments need sticky sessions or Redis.
type MemoryStore struct {
	mu      sync.Mutex
	flows   map[string]*Flow
	submits map[string]struct{}
	ttl     time.Duration
}

// NewMemoryStore constructs a [MemoryStore] and starts its cleanup routine,
// which stops when the given context is cancelled.
func NewMemoryStore(ctx context.Context) *MemoryStore {
	store := &MemoryStore{
		flows:   make(map[string]*Flow),
		submits: make(map[string]struct{}),
		ttl:     constants.FlowTTL,
	}

	go func() {
		ticker := time.NewTicker(constants.FlowCleanupInterval)
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

// Save upserts a copy of the flow record.
func (s *MemoryStore) Save(_ context.Context, flow *Flow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *flow
	s.flows[flow.ID] = &copied
	return nil
}

// Find returns a copy of the flow, so callers never mutate shared state.
func (s *MemoryStore) Find(_ context.Context, id string) (*Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flow, ok := s.flows[id]
	if !ok || time.Since(flow.UpdatedAt) > s.ttl {
		return nil, ErrNotFound
	}

	copied := *flow
	return &copied, nil
}

// Delete removes the flow and any in-flight marker.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.flows, id)
	delete(s.submits, id)
	return nil
}

// AcquireSubmit takes the in-flight slot if it is free.
func (s *MemoryStore) AcquireSubmit(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.submits[id]; busy {
		return false, nil
	}
	s.submits[id] = struct{}{}
	return true, nil
}

// ReleaseSubmit frees the in-flight slot.
func (s *MemoryStore) ReleaseSubmit(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.submits, id)
	return nil
}

// sweep removes expired flows.
func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, flow := range s.flows {
		if time.Since(flow.UpdatedAt) > s.ttl {
			delete(s.flows, id)
			delete(s.submits, id)
		}
	}
}
