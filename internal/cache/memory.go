package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a process-local Cache. Expired entries are dropped when read and by a sweep
// that runs on write at most once per ttl.
type Memory struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	ttl       time.Duration
	entries   map[string]entry
	nextSweep time.Time
}

var _ Cache = (*Memory)(nil)

func NewMemory(clock clockwork.Clock, ttl time.Duration) *Memory {
	return &Memory{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.clock.Now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return slices.Clone(e.value), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if !now.Before(m.nextSweep) {
		for k, e := range m.entries {
			if !now.Before(e.expiresAt) {
				delete(m.entries, k)
			}
		}
		m.nextSweep = now.Add(m.ttl)
	}
	m.entries[key] = entry{value: slices.Clone(value), expiresAt: now.Add(m.ttl)}
	return nil
}

// Len returns the number of stored entries, expired ones included until they are dropped.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
