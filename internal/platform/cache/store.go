package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a cache-aside helper scoped to one key prefix. Invalidation bumps
// a version counter embedded in every key instead of scanning the keyspace,
// so stale entries simply age out under their TTL.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStore instantiates a Store for the given prefix.
func NewStore(client *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

func (s *Store) versionKey() string {
	return s.prefix + ":version"
}

// Version returns the current cache version, initialising it when missing.
func (s *Store) Version(ctx context.Context) (int64, error) {
	if s == nil || s.client == nil {
		return 0, nil
	}
	ver, err := s.client.Get(ctx, s.versionKey()).Int64()
	if errors.Is(err, redis.Nil) {
		if err := s.client.Set(ctx, s.versionKey(), 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes a versioned cache key from parts.
func (s *Store) BuildKey(ctx context.Context, parts ...string) (string, error) {
	ver, err := s.Version(ctx)
	if err != nil {
		return "", err
	}
	segments := append([]string{s.prefix, "v" + strconv.FormatInt(ver, 10)}, parts...)
	return strings.Join(segments, ":"), nil
}

// Get loads a cached JSON value into target. The bool reports a hit.
func (s *Store) Get(ctx context.Context, key string, target any) (bool, error) {
	if s == nil || s.client == nil {
		return false, nil
	}
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("platform/cache: get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return false, fmt.Errorf("platform/cache: decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores value as JSON under key with the store TTL.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	if s == nil || s.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("platform/cache: encode %s: %w", key, err)
	}
	return s.client.Set(ctx, key, raw, s.ttl).Err()
}

// Invalidate bumps the version so every previously written key goes dark.
func (s *Store) Invalidate(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Incr(ctx, s.versionKey()).Err()
}
