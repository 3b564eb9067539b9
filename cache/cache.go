// Package cache stores serialized engine results keyed by their inputs.
// Engine results are deterministic, so a cached value never goes stale;
// the TTL only bounds memory. Memory drops expired entries when they are
// read and in a sweep run from Set at most once per sweepInterval.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Cache is a string key/value store with per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Key joins normalized input parts into a cache key.
func Key(parts ...string) string {
	return "lending:" + strings.Join(parts, ":")
}

const sweepInterval = time.Minute

// Memory is an in-process Cache.
type Memory struct {
	mu        sync.RWMutex
	data      map[string]entry
	now       func() time.Time
	lastSweep time.Time
}

type entry struct {
	value     string
	expiresAt time.Time // zero = no expiry
}

func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()

	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	now := m.now()
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if now.Sub(m.lastSweep) >= sweepInterval {
		m.sweep(now)
	}
	m.data[key] = e
	return nil
}

// sweep deletes expired entries. Callers hold mu.
func (m *Memory) sweep(now time.Time) {
	for k, e := range m.data {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(m.data, k)
		}
	}
	m.lastSweep = now
}

// Len returns the number of entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
