package cache

import (
	"context"
	"sync"
	"time"
)

// item is a cached value with an absolute expiry; zero never expires.
type item struct {
	value      []byte
	expiration int64
}

func (i item) expired(now int64) bool {
	return i.expiration > 0 && now > i.expiration
}

// Memory is a thread-safe in-process cache with expiration.
type Memory struct {
	mu       sync.RWMutex
	items    map[string]item
	maxItems int
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemory creates a cache holding at most maxItems entries (0 means no
// limit). Expired entries are purged every cleanupInterval when it is
// positive; call Close to stop the purge loop.
func NewMemory(maxItems int, cleanupInterval time.Duration) *Memory {
	m := &Memory{
		items:    make(map[string]item),
		maxItems: maxItems,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go m.cleanupLoop(cleanupInterval)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, found := m.items[key]
	if !found || it.expired(m.now().UnixNano()) {
		return nil, ErrMiss
	}
	out := make([]byte, len(it.value))
	copy(out, it.value)
	return out, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var exp int64
	if ttl > 0 {
		exp = m.now().Add(ttl).UnixNano()
	}
	buf := make([]byte, len(value))
	copy(buf, value)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[key]; !exists && m.maxItems > 0 && len(m.items) >= m.maxItems {
		m.evictSoonest()
	}
	m.items[key] = item{value: buf, expiration: exp}
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

// Count returns the number of entries, including expired ones not yet purged.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Close stops the purge loop.
func (m *Memory) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Memory) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.deleteExpired()
		case <-m.stop:
			return
		}
	}
}

func (m *Memory) deleteExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UnixNano()
	for k, v := range m.items {
		if v.expired(now) {
			delete(m.items, k)
		}
	}
}

// evictSoonest drops the entry closest to expiry, preferring already expired
// ones. Must be called with mu held.
func (m *Memory) evictSoonest() {
	var victim string
	var soonest int64
	first := true
	for k, v := range m.items {
		exp := v.expiration
		if exp == 0 {
			continue
		}
		if first || exp < soonest {
			victim, soonest, first = k, exp, false
		}
	}
	if first {
		for k := range m.items {
			victim = k
			break
		}
	}
	delete(m.items, victim)
}
