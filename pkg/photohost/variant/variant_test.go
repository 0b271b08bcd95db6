package variant

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJPEG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 120, G: 140, B: 160, A: 255})
	require.NoError(t, imaging.Save(img, path, imaging.JPEGQuality(90)))
}

func openDims(t *testing.T, path string) (int, int) {
	t.Helper()
	img, err := imaging.Open(path)
	require.NoError(t, err)
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestNewRequiresCacheDir(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestEnsureVariantResizes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpg")
	writeJPEG(t, src, 800, 600)

	d, err := New(Config{CacheDir: filepath.Join(dir, "cache")})
	require.NoError(t, err)

	out, err := d.EnsureVariant(src, Spec{Name: "thumbnail", MaxDim: 400})
	require.NoError(t, err)
	assert.Equal(t, d.VariantPath(src, Spec{Name: "thumbnail", MaxDim: 400}), out)

	w, h := openDims(t, out)
	assert.Equal(t, 400, w)
	assert.Equal(t, 300, h)
}

func TestEnsureVariantNoUpscale(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "small.jpg")
	writeJPEG(t, src, 200, 100)

	d, err := New(Config{CacheDir: filepath.Join(dir, "cache")})
	require.NoError(t, err)

	out, err := d.EnsureVariant(src, Spec{Name: "medium", MaxDim: 2400})
	require.NoError(t, err)

	w, h := openDims(t, out)
	assert.Equal(t, 200, w)
	assert.Equal(t, 100, h)
}

func TestEnsureVariantCacheHit(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpg")
	writeJPEG(t, src, 800, 600)

	d, err := New(Config{CacheDir: filepath.Join(dir, "cache")})
	require.NoError(t, err)

	spec := Spec{Name: "small", MaxDim: 1600}
	out, err := d.EnsureVariant(src, spec)
	require.NoError(t, err)

	first, err := os.Stat(out)
	require.NoError(t, err)

	// Second call with an unchanged source must not regenerate.
	out2, err := d.EnsureVariant(src, spec)
	require.NoError(t, err)
	assert.Equal(t, out, out2)

	second, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, first.ModTime(), second.ModTime())
	assert.Equal(t, first.Size(), second.Size())
}

func TestEnsureVariantRegeneratesOnNewerSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpg")
	writeJPEG(t, src, 800, 600)

	d, err := New(Config{CacheDir: filepath.Join(dir, "cache")})
	require.NoError(t, err)

	spec := Spec{Name: "thumbnail", MaxDim: 400}
	out, err := d.EnsureVariant(src, spec)
	require.NoError(t, err)

	// Replace the source with different dimensions and bump its mtime past
	// the cached output.
	writeJPEG(t, src, 600, 600)
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(src, future, future))

	out2, err := d.EnsureVariant(src, spec)
	require.NoError(t, err)
	assert.Equal(t, out, out2)

	w, h := openDims(t, out2)
	assert.Equal(t, 400, w)
	assert.Equal(t, 400, h)
}

func TestEnsureVariantMissingSource(t *testing.T) {
	dir := t.TempDir()
	d, err := New(Config{CacheDir: filepath.Join(dir, "cache")})
	require.NoError(t, err)

	_, err = d.EnsureVariant(filepath.Join(dir, "missing.jpg"), Spec{Name: "thumbnail", MaxDim: 400})
	assert.Error(t, err)
}

func TestEnsureVariantRejectsZeroDimension(t *testing.T) {
	dir := t.TempDir()
	d, err := New(Config{CacheDir: filepath.Join(dir, "cache")})
	require.NoError(t, err)

	_, err = d.EnsureVariant(filepath.Join(dir, "photo.jpg"), Spec{Name: "broken", MaxDim: 0})
	assert.Error(t, err)
}

func TestIsImageFilename(t *testing.T) {
	assert.True(t, IsImageFilename("photo.jpg"))
	assert.True(t, IsImageFilename("photo.JPEG"))
	assert.True(t, IsImageFilename("scan.tiff"))
	assert.False(t, IsImageFilename("notes.txt"))
	assert.False(t, IsImageFilename("photo"))
}
