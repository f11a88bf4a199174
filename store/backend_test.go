package store

import (
	"context"
	"sync"
)

// MemoryBackend 只在进程内保存数据。
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

var _ Backend = (*MemoryBackend)(nil)

func NewMemoryBackend() *MemoryBackend { return &MemoryBackend{data: map[string][]byte{}} }

func (m *MemoryBackend) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (m *MemoryBackend) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
