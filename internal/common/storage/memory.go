package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// MemoryStore is an in-process ObjectStore for tests and local runs.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailPut, when set, is returned by Put for matching paths.
	FailPut func(path string) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	if m.FailPut != nil {
		if err := m.FailPut(path); err != nil {
			return err
		}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = buf.Bytes()
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	return nil
}

func (m *MemoryStore) Exists(ctx context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[path]
	return ok, nil
}

func (m *MemoryStore) PresignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	if ok, _ := m.Exists(ctx, path); !ok {
		return "", fmt.Errorf("object %s not found", path)
	}
	return fmt.Sprintf("memory://%s?expires=%d", path, int(expiry.Seconds())), nil
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Put is also used by tests to seed orphans.
var _ ObjectStore = (*MemoryStore)(nil)
