// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/novagate/account-portal/internal/platform/constants"
)

// RedisStore implements [Store] on Redis so any portal replica can serve a
// flow another replica opened.
//
// # Keys
//
//   - portal:flow:<id>        JSON flow record, TTL [constants.FlowTTL]
//   - portal:flow_submit:<id> in-flight marker, short TTL as a crash guard
type RedisStore struct {
	client *redis.Client
}

// submitTTL caps how long an in-flight marker can outlive a crashed replica.
const submitTTL = 2 * constants.UpstreamRequestTimeout

// NewRedisStore creates a Redis-backed flow store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Save upserts the flow record with the flow TTL.
func (s *RedisStore) Save(ctx context.Context, flow *Flow) error {
	payload, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("redis_flow_encode_failed: %w", err)
	}

	key := constants.RedisPrefixFlow + flow.ID
	if err := s.client.Set(ctx, key, payload, constants.FlowTTL).Err(); err != nil {
		return fmt.Errorf("redis_flow_save_failed: %w", err)
	}
	return nil
}

// Find returns the flow by ID, or [ErrNotFound] when absent or expired.
func (s *RedisStore) Find(ctx context.Context, id string) (*Flow, error) {
	key := constants.RedisPrefixFlow + id

	payload, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis_flow_find_failed: %w", err)
	}

	flow := &Flow{}
	if err := json.Unmarshal(payload, flow); err != nil {
		return nil, fmt.Errorf("redis_flow_decode_failed: %w", err)
	}
	return flow, nil
}

// Delete removes the flow and its in-flight marker.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	keys := []string{constants.RedisPrefixFlow + id, constants.RedisPrefixSubmit + id}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis_flow_delete_failed: %w", err)
	}
	return nil
}

// AcquireSubmit takes the in-flight slot via SETNX; false means a submission
// is already running somewhere in the fleet.
func (s *RedisStore) AcquireSubmit(ctx context.Context, id string) (bool, error) {
	key := constants.RedisPrefixSubmit + id

	acquired, err := s.client.SetNX(ctx, key, time.Now().UnixMilli(), submitTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis_flow_acquire_failed: %w", err)
	}
	return acquired, nil
}

// ReleaseSubmit frees the in-flight slot.
func (s *RedisStore) ReleaseSubmit(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, constants.RedisPrefixSubmit+id).Err(); err != nil {
		return fmt.Errorf("redis_flow_release_failed: %w", err)
	}
	return nil
}
