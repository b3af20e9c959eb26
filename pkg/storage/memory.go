package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

type memoryObject struct {
	contentType string
	data        []byte
}

// Memory is an in-process Storage. Useful for tests and single-node demos.
type Memory struct {
	objects map[string]memoryObject
	mu      sync.RWMutex
}

// NewMemory returns an empty in-memory storage.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memoryObject)}
}

// Put stores a copy of r under key.
func (m *Memory) Put(_ context.Context, key string, r io.Reader, _ int64, opts ...Option) (*ObjectInfo, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	o := &putOptions{}
	for _, opt := range opts {
		opt(o)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadFailed
	}

	contentType := o.contentType
	if contentType == "" {
		contentType = DetectContentType(data)
	}

	m.mu.Lock()
	m.objects[key] = memoryObject{contentType: contentType, data: data}
	m.mu.Unlock()

	return &ObjectInfo{Key: key, ContentType: contentType, Size: int64(len(data))}, nil
}

// Get returns a reader over a snapshot of the object.
func (m *Memory) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

var _ Storage = (*Memory)(nil)
