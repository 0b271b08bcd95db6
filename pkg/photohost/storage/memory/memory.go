// Package memory implements an in-memory photohost.BlobStore for tests.
package memory

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/ceephoto/photohost/pkg/photohost"
)

type object struct {
	data        []byte
	contentType string
}

// Backend is an in-memory implementation of the photohost.BlobStore
// interface. Safe for concurrent use.
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{objects: make(map[string]object)}
}

// PublicURL returns a synthetic URL for a key.
func (b *Backend) PublicURL(key string) string {
	return "memory://" + key
}

// Put stores an object and returns its synthetic URL.
func (b *Backend) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", &photohost.StorageError{Backend: "memory", Key: key, Op: "put", Err: err}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = object{data: data, contentType: contentType}
	return b.PublicURL(key), nil
}

// Delete removes an object.
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[key]; !ok {
		return &photohost.StorageError{Backend: "memory", Key: key, Op: "delete", Err: errors.New("object not found")}
	}
	delete(b.objects, key)
	return nil
}

// Copy duplicates an object under a new key.
func (b *Backend) Copy(ctx context.Context, oldKey, newKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.objects[oldKey]
	if !ok {
		return &photohost.StorageError{Backend: "memory", Key: oldKey, Op: "copy", Err: errors.New("object not found")}
	}
	b.objects[newKey] = obj
	return nil
}

// Has reports whether a key is stored. Test helper.
func (b *Backend) Has(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.objects[key]
	return ok
}

// Get returns a stored object's bytes and content type. Test helper.
func (b *Backend) Get(key string) ([]byte, string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	obj, ok := b.objects[key]
	return obj.data, obj.contentType, ok
}

// Len reports the number of stored objects. Test helper.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}
