package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestPutAndPublicURL(t *testing.T) {
	dir := t.TempDir()
	b, err := New(Config{BaseDir: dir, URLPrefix: "https://cdn.example.com"})
	require.NoError(t, err)
	ctx := context.Background()

	url, err := b.Put(ctx, "full/a.jpg", strings.NewReader("payload"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/full/a.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "full", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestPublicURLWithoutPrefix(t *testing.T) {
	dir := t.TempDir()
	b, err := New(Config{BaseDir: dir})
	require.NoError(t, err)

	assert.Equal(t, "file://"+filepath.Join(dir, "full/a.jpg"), b.PublicURL("full/a.jpg"))
}

func TestDeleteCleansEmptyDirs(t *testing.T) {
	dir := t.TempDir()
	b, err := New(Config{BaseDir: dir})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = b.Put(ctx, "thumbnail/only.jpg", strings.NewReader("x"), "image/jpeg")
	require.NoError(t, err)

	require.NoError(t, b.Delete(ctx, "thumbnail/only.jpg"))

	_, err = os.Stat(filepath.Join(dir, "thumbnail"))
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, b.Delete(ctx, "thumbnail/only.jpg"))
}

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	b, err := New(Config{BaseDir: dir})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = b.Put(ctx, "full/old.jpg", strings.NewReader("bytes"), "image/jpeg")
	require.NoError(t, err)

	require.NoError(t, b.Copy(ctx, "full/old.jpg", "small/new.jpg"))

	data, err := os.ReadFile(filepath.Join(dir, "small", "new.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "bytes", string(data))

	assert.Error(t, b.Copy(ctx, "full/missing.jpg", "x/y.jpg"))
}
