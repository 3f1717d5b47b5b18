// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cache keeps generated pages and regenerates them in the
// background once they are older than the revalidation window.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectValkey creates a Valkey client and verifies the connection with a ping.
func ConnectValkey(host, port, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping: %w", err)
	}

	slog.Info("valkey connected", "addr", fmt.Sprintf("%s:%s", host, port))
	return client, nil
}

// pageKeyPrefix is the Valkey key prefix for generated pages.
const pageKeyPrefix = "isr:"

// ValkeyStore keeps generated pages in Valkey so every replica serves the
// same generation. Keys expire after ttl, which should be a multiple of the
// revalidation window so stale pages remain servable for a while.
type ValkeyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewValkeyStore creates a store backed by the given Valkey client.
// A ttl of zero keeps entries until evicted by Valkey.
func NewValkeyStore(client *redis.Client, ttl time.Duration) *ValkeyStore {
	return &ValkeyStore{client: client, ttl: ttl}
}

// Get retrieves a generated page. Errors are logged and reported as misses.
func (s *ValkeyStore) Get(ctx context.Context, key string) (*Entry, bool) {
	val, err := s.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("page store get error", "key", key, "error", err)
		return nil, false
	}

	var e Entry
	if err := json.Unmarshal(val, &e); err != nil {
		slog.Warn("page store entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return &e, true
}

// Set stores a generated page.
func (s *ValkeyStore) Set(ctx context.Context, key string, e *Entry) {
	val, err := json.Marshal(e)
	if err != nil {
		slog.Warn("page store encode error", "key", key, "error", err)
		return
	}
	if err := s.client.Set(ctx, pageKeyPrefix+key, val, s.ttl).Err(); err != nil {
		slog.Warn("page store set error", "key", key, "error", err)
	}
}

// Delete removes a single page.
func (s *ValkeyStore) Delete(ctx context.Context, key string) {
	if err := s.client.Del(ctx, pageKeyPrefix+key).Err(); err != nil {
		slog.Warn("page store delete error", "key", key, "error", err)
	}
}

// Purge removes every generated page by scanning for the prefix.
func (s *ValkeyStore) Purge(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, pageKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("page store scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page store bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("page store cleared", "deleted", deleted)
	}
}
