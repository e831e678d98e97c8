// Package reportcache stores computed cohort reports addressed by their full
// parameter tuple. Finalized reports are immutable, so entries never expire;
// the engine simply bypasses the cache for ranges that are still
// accumulating.
package reportcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gitcohort/internal/ledger"
)

// Cache is the report store. Put must be atomic per key: a reader sees the
// whole payload or nothing. Writes are last-writer-wins, which is safe
// because recomputing the same key from finalized inputs yields byte-identical
// output.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte) error
}

// Key builds the canonical cache key for a report.
func Key(kind string, scope ledger.Scope, start, end time.Time, windowDays int) string {
	return fmt.Sprintf("%s|%s|%s|%s|%d",
		kind, scope.Key(), start.Format(time.RFC3339), end.Format(time.RFC3339), windowDays)
}

// Memory is a process-local Cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payload, ok := m.entries[key]
	return payload, ok, nil
}

func (m *Memory) Put(ctx context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(payload))
	copy(stored, payload)
	m.entries[key] = stored
	return nil
}

// Len returns the number of cached reports.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
