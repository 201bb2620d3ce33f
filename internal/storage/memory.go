package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// Memory keeps spooled objects in a map. Test use only.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte

	PutErr error
}

func NewMemory() *Memory {
	return &Memory{objects: map[string][]byte{}}
}

func (m *Memory) Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error) {
	if m.PutErr != nil {
		return PutResult{}, m.PutErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return PutResult{}, err
	}
	key := uuid.NewString()
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return PutResult{Key: key, URL: "mem://" + key}, nil
}

func (m *Memory) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	data, ok := m.objects[key]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("memory storage: no object %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Len reports the number of live objects; tests use it to detect leaks.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
