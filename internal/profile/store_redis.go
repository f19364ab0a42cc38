// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/novagate/account-portal/internal/platform/constants"
)

// RedisStore implements [CacheStore] on Redis so any portal replica can serve
// a session another replica warmed.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed profile store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the cached profile, or [ErrNotCached] when absent or expired.
func (s *RedisStore) Get(ctx context.Context, key string) (*Profile, error) {
	payload, err := s.client.Get(ctx, constants.RedisPrefixProfile+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotCached
		}
		return nil, fmt.Errorf("redis_profile_read_failed: %w", err)
	}

	cached := &Profile{}
	if err := json.Unmarshal(payload, cached); err != nil {
		return nil, fmt.Errorf("redis_profile_decode_failed: %w", err)
	}
	return cached, nil
}

// Set replaces the slot wholesale with the cache TTL.
func (s *RedisStore) Set(ctx context.Context, key string, profile *Profile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("redis_profile_encode_failed: %w", err)
	}

	redisKey := constants.RedisPrefixProfile + key
	if err := s.client.Set(ctx, redisKey, payload, constants.ProfileCacheTTL).Err(); err != nil {
		return fmt.Errorf("redis_profile_write_failed: %w", err)
	}
	return nil
}

// Delete drops the slot. Absent keys are not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, constants.RedisPrefixProfile+key).Err(); err != nil {
		return fmt.Errorf("redis_profile_delete_failed: %w", err)
	}
	return nil
}
