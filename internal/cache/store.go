// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Entry is one generated page.
type Entry struct {
	HTML        []byte    `json:"html"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Store persists generated pages. Implementations treat backend failures
// as misses; a page can always be generated again.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, bool)
	Set(ctx context.Context, key string, e *Entry)
	Delete(ctx context.Context, key string)
	Purge(ctx context.Context)
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*ValkeyStore)(nil)
)

// MemoryStore keeps generated pages in process, evicting the least
// recently used page beyond capacity.
type MemoryStore struct {
	lru *expirable.LRU[string, *Entry]
}

// NewMemoryStore creates a store holding at most capacity pages. Entries
// never expire on their own; staleness is decided by the Revalidator.
func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{lru: expirable.NewLRU[string, *Entry](capacity, nil, 0)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, bool) {
	return s.lru.Get(key)
}

func (s *MemoryStore) Set(_ context.Context, key string, e *Entry) {
	s.lru.Add(key, e)
}

func (s *MemoryStore) Delete(_ context.Context, key string) {
	s.lru.Remove(key)
}

func (s *MemoryStore) Purge(_ context.Context) {
	s.lru.Purge()
}

// Len returns the number of stored pages.
func (s *MemoryStore) Len() int {
	return s.lru.Len()
}

// HomeKey is the key of the listing page.
const HomeKey = "home"

// PostKey returns the key of a post page.
func PostKey(uid string) string {
	return "post:" + uid
}
