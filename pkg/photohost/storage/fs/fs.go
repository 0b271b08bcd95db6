// Package fs implements the photohost.BlobStore interface on the local
// filesystem. Useful for development and tests that want real files.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ceephoto/photohost/pkg/photohost"
)

// Backend is a filesystem implementation of the photohost.BlobStore interface
type Backend struct {
	mu        sync.RWMutex
	baseDir   string
	urlPrefix string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for storing files
	URLPrefix string // URL prefix reported for stored objects
}

// New creates a new filesystem storage backend
func New(config Config) (photohost.BlobStore, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(config.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{
		baseDir:   config.BaseDir,
		urlPrefix: strings.TrimRight(config.URLPrefix, "/"),
	}, nil
}

// PublicURL returns the URL a stored key is served under.
func (b *Backend) PublicURL(key string) string {
	if b.urlPrefix == "" {
		return "file://" + filepath.Join(b.baseDir, key)
	}
	return b.urlPrefix + "/" + key
}

// Put writes an object to disk and returns its public URL. The content type
// is not stored; it is re-derived from the extension on serving.
func (b *Backend) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	filePath := filepath.Join(b.baseDir, key)
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return "", &photohost.StorageError{Backend: "fs", Key: key, Op: "put", Err: err}
	}

	f, err := os.Create(filePath)
	if err != nil {
		return "", &photohost.StorageError{Backend: "fs", Key: key, Op: "put", Err: err}
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", &photohost.StorageError{Backend: "fs", Key: key, Op: "put", Err: err}
	}

	return b.PublicURL(key), nil
}

// Delete removes an object from the filesystem.
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	filePath := filepath.Join(b.baseDir, key)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return &photohost.StorageError{Backend: "fs", Key: key, Op: "delete", Err: errors.New("object not found")}
	}
	if err := os.Remove(filePath); err != nil {
		return &photohost.StorageError{Backend: "fs", Key: key, Op: "delete", Err: err}
	}

	b.cleanupEmptyDirectories(filepath.Dir(filePath))
	return nil
}

// Copy duplicates an object under a new key.
func (b *Backend) Copy(ctx context.Context, oldKey, newKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	src, err := os.Open(filepath.Join(b.baseDir, oldKey))
	if err != nil {
		return &photohost.StorageError{Backend: "fs", Key: oldKey, Op: "copy", Err: err}
	}
	defer src.Close()

	dstPath := filepath.Join(b.baseDir, newKey)
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return &photohost.StorageError{Backend: "fs", Key: newKey, Op: "copy", Err: err}
	}
	dst, err := os.Create(dstPath)
	if err != nil {
		return &photohost.StorageError{Backend: "fs", Key: newKey, Op: "copy", Err: err}
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return &photohost.StorageError{Backend: "fs", Key: newKey, Op: "copy", Err: err}
	}
	return nil
}

// cleanupEmptyDirectories recursively removes empty directories up to baseDir
func (b *Backend) cleanupEmptyDirectories(dir string) {
	if dir == b.baseDir {
		return
	}
	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}
