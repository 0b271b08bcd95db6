package photosync

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storagememory "github.com/ceephoto/photohost/pkg/photohost/storage/memory"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func setup(t *testing.T) (*Syncer, *storagememory.Backend, string, string) {
	t.Helper()
	photosDir := t.TempDir()
	siteDir := t.TempDir()
	store := storagememory.New()
	return NewSyncer(store, photosDir, siteDir), store, photosDir, siteDir
}

func TestSyncOnceUploadsNewFiles(t *testing.T) {
	s, store, photosDir, siteDir := setup(t)
	ctx := context.Background()

	writeFile(t, filepath.Join(photosDir, "a.jpg"), "photo-a")
	writeFile(t, filepath.Join(photosDir, "b.png"), "photo-b")
	writeFile(t, filepath.Join(photosDir, "notes.txt"), "not a photo")

	changed, err := s.SyncOnce(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	assert.True(t, store.Has("a.jpg"))
	assert.True(t, store.Has("b.png"))
	assert.False(t, store.Has("notes.txt"))

	manifest, err := s.loadManifest()
	require.NoError(t, err)
	require.Len(t, manifest, 2)
	assert.Equal(t, "memory://a.jpg", manifest["a.jpg"].URL)
	assert.Len(t, manifest["a.jpg"].SHA1, 40)
	assert.Equal(t, int64(len("photo-a")), manifest["a.jpg"].Size)

	index, err := os.ReadFile(filepath.Join(siteDir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "memory://a.jpg")
	assert.Contains(t, string(index), "memory://b.png")
}

func TestSyncOnceNoChangesSecondRun(t *testing.T) {
	s, _, photosDir, _ := setup(t)
	ctx := context.Background()

	writeFile(t, filepath.Join(photosDir, "a.jpg"), "photo-a")

	changed, err := s.SyncOnce(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.SyncOnce(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSyncOnceDetectsModification(t *testing.T) {
	s, store, photosDir, _ := setup(t)
	ctx := context.Background()

	path := filepath.Join(photosDir, "a.jpg")
	writeFile(t, path, "v1")
	_, err := s.SyncOnce(ctx)
	require.NoError(t, err)

	writeFile(t, path, "v2 with different hash")
	changed, err := s.SyncOnce(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	data, _, ok := store.Get("a.jpg")
	require.True(t, ok)
	assert.Equal(t, "v2 with different hash", string(data))
}

func TestSyncOnceRemovesDeletedFiles(t *testing.T) {
	s, store, photosDir, _ := setup(t)
	ctx := context.Background()

	path := filepath.Join(photosDir, "a.jpg")
	writeFile(t, path, "photo-a")
	_, err := s.SyncOnce(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	changed, err := s.SyncOnce(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	assert.False(t, store.Has("a.jpg"))
	manifest, err := s.loadManifest()
	require.NoError(t, err)
	assert.Empty(t, manifest)
}

func TestLoadManifestLegacyListForm(t *testing.T) {
	s, _, _, siteDir := setup(t)

	legacy := `[{"name":"a.jpg","url":"https://x/a.jpg","sha1":"abc","size":7},{"url":"no-name"}]`
	writeFile(t, filepath.Join(siteDir, "photos.json"), legacy)

	manifest, err := s.loadManifest()
	require.NoError(t, err)
	require.Len(t, manifest, 1)
	assert.Equal(t, "https://x/a.jpg", manifest["a.jpg"].URL)
}

func TestLoadManifestEmptyOrMissing(t *testing.T) {
	s, _, _, siteDir := setup(t)

	manifest, err := s.loadManifest()
	require.NoError(t, err)
	assert.Empty(t, manifest)

	writeFile(t, filepath.Join(siteDir, "photos.json"), "")
	manifest, err = s.loadManifest()
	require.NoError(t, err)
	assert.Empty(t, manifest)
}

func TestScanSkipsSubdirectories(t *testing.T) {
	s, store, photosDir, _ := setup(t)
	ctx := context.Background()

	sub := filepath.Join(photosDir, "archive")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeFile(t, filepath.Join(sub, "nested.jpg"), "nested")
	writeFile(t, filepath.Join(photosDir, "top.jpg"), "top")

	_, err := s.SyncOnce(ctx)
	require.NoError(t, err)

	assert.True(t, store.Has("top.jpg"))
	assert.False(t, store.Has("nested.jpg"))
}
