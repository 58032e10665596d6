package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	payload   []byte
	createdAt time.Time
	ttl       time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.createdAt) > e.ttl
}

// Memory is an in-process Store with lazy expiry on read. Safe for
// concurrent use.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	now        func() time.Time
}

type MemoryOption func(*Memory)

// WithDefaultTTL overrides DefaultTTL.
func WithDefaultTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) {
		if ttl > 0 {
			m.defaultTTL = ttl
		}
	}
}

// WithClock injects the time source. Tests use it to move past expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries:    make(map[string]entry),
		defaultTTL: DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the payload for key. An expired entry is removed and reported
// as ErrNotFound.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if !e.expired(m.now()) {
		cp := make([]byte, len(e.payload))
		copy(cp, e.payload)
		return cp, nil
	}

	m.mu.Lock()
	// recheck: a concurrent Set may have refreshed the entry
	if cur, ok := m.entries[key]; ok && cur.expired(m.now()) {
		delete(m.entries, key)
	}
	m.mu.Unlock()
	return nil, ErrNotFound
}

// Set stores payload under key, replacing any existing entry.
func (m *Memory) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)

	m.mu.Lock()
	m.entries[key] = entry{payload: cp, createdAt: m.now(), ttl: ttl}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
	return nil
}

// Len counts entries, including expired ones not yet swept.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Cleanup removes every expired entry and returns how many were removed.
// The write lock is taken per deletion so readers are not starved during a
// large sweep.
func (m *Memory) Cleanup(ctx context.Context) (int, error) {
	now := m.now()

	m.mu.RLock()
	var stale []string
	for k, e := range m.entries {
		if e.expired(now) {
			stale = append(stale, k)
		}
	}
	m.mu.RUnlock()

	removed := 0
	for _, k := range stale {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		m.mu.Lock()
		if e, ok := m.entries[k]; ok && e.expired(now) {
			delete(m.entries, k)
			removed++
		}
		m.mu.Unlock()
	}
	return removed, nil
}

var (
	_ Store   = (*Memory)(nil)
	_ Sweeper = (*Memory)(nil)
)
