package store

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rushteam/winerec/core"
)

var errMemoryClosed = errors.New("store: memory store closed")

// MemoryStore 是进程内的 Store，用于测试与单机会话，进程退出后数据丢失。
// 带 TTL 的 key 在读取时惰性过期，不启动后台清理协程。
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]memEntry
	now    func() time.Time
	closed bool
}

type memEntry struct {
	value    []byte
	expireAt time.Time // 零值表示永不过期
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && !now.Before(e.expireAt)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]memEntry), now: time.Now}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, errMemoryClosed
	}
	e, ok := m.data[key]
	if !ok || e.expired(m.now()) {
		return nil, core.ErrStoreNotFound
	}
	return slices.Clone(e.value), nil
}

// Set 写入拷贝；ttl 为秒，<= 0 表示不过期。
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errMemoryClosed
	}
	e := memEntry{value: slices.Clone(value)}
	if len(ttl) > 0 && ttl[0] > 0 {
		e.expireAt = m.now().Add(time.Duration(ttl[0]) * time.Second)
	}
	m.data[key] = e
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errMemoryClosed
	}
	delete(m.data, key)
	return nil
}

// BatchGet 只返回存在且未过期的 key。
func (m *MemoryStore) BatchGet(_ context.Context, keys []string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, errMemoryClosed
	}
	now := m.now()
	result := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if e, ok := m.data[k]; ok && !e.expired(now) {
			result[k] = slices.Clone(e.value)
		}
	}
	return result, nil
}

// Close 释放数据，可重复调用。
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.data = nil
	return nil
}

var _ core.Store = (*MemoryStore)(nil)
