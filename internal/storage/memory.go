package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"
)

// Object is a stored blob.
type Object struct {
	ContentType string
	Data        []byte
}

// MemoryStorage keeps objects in-process. Used by tests and the memory driver.
type MemoryStorage struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]Object
}

func NewMemoryStorage(bucket string) *MemoryStorage {
	return &MemoryStorage{bucket: bucket, objects: make(map[string]Object)}
}

func (m *MemoryStorage) PutObject(ctx context.Context, objectKey, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectKey] = Object{ContentType: contentType, Data: data}
	return nil
}

func (m *MemoryStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.objects[objectKey]; !ok {
		return "", fmt.Errorf("%w: %s", ErrObjectNotFound, objectKey)
	}
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}
	u := url.URL{
		Scheme:   "memory",
		Host:     m.bucket,
		Path:     "/" + objectKey,
		RawQuery: url.Values{"expires": {expires.String()}}.Encode(),
	}
	return u.String(), nil
}

func (m *MemoryStorage) DeleteObject(ctx context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectKey)
	return nil
}

// Get returns a stored object.
func (m *MemoryStorage) Get(objectKey string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[objectKey]
	return obj, ok
}
