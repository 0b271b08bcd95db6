// Package variant derives resized, orientation-corrected copies of source
// images, cached by modification-time comparison against the source file.
package variant

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// jpegQuality is the fixed re-encode quality for JPEG-compatible sources.
const jpegQuality = 85

// Spec names a variant and bounds its longest dimension. Immutable
// configuration; the deriver never mutates specs.
type Spec struct {
	Name   string
	MaxDim int
}

// Config configures a Deriver. CacheDir is where derived files live, laid
// out as {CacheDir}/{variantName}/{originalFileName}.
type Config struct {
	CacheDir string
}

// Deriver produces cached variant files. Safe for concurrent use: writers
// regenerate into a temp file and publish with an atomic rename, so
// concurrent regeneration of the same variant is last-writer-wins.
type Deriver struct {
	cacheDir string
}

// New creates a Deriver rooted at the configured cache directory.
func New(cfg Config) (*Deriver, error) {
	if cfg.CacheDir == "" {
		return nil, errors.New("cache directory is required")
	}
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Deriver{cacheDir: cfg.CacheDir}, nil
}

// VariantPath returns the derived-file location for a source and spec
// without generating anything.
func (d *Deriver) VariantPath(sourcePath string, spec Spec) string {
	return filepath.Join(d.cacheDir, spec.Name, filepath.Base(sourcePath))
}

// EnsureVariant returns the path of an up-to-date derived file for the
// source, re-encoding only when the cached copy is missing or older than the
// source. The derived image is stored upright (orientation applied to pixel
// data) and downscaled so neither dimension exceeds spec.MaxDim; sources
// already within bounds are re-encoded at their original size.
func (d *Deriver) EnsureVariant(sourcePath string, spec Spec) (string, error) {
	if spec.MaxDim <= 0 {
		return "", fmt.Errorf("variant %s: max dimension must be positive", spec.Name)
	}

	outPath := d.VariantPath(sourcePath, spec)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create variant directory: %w", err)
	}

	srcInfo, err := os.Stat(sourcePath)
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}

	// Cache hit: derived file exists and is at least as new as the source.
	if outInfo, err := os.Stat(outPath); err == nil && !outInfo.ModTime().Before(srcInfo.ModTime()) {
		return outPath, nil
	}

	if err := d.generate(sourcePath, outPath, spec); err != nil {
		return "", err
	}
	return outPath, nil
}

func (d *Deriver) generate(sourcePath, outPath string, spec Spec) error {
	// AutoOrientation bakes the EXIF orientation into the pixel data, so the
	// output needs no orientation tag to display upright.
	img, err := imaging.Open(sourcePath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(sourcePath), err)
	}

	// Fit only shrinks; a source within bounds keeps its dimensions.
	resized := imaging.Fit(img, spec.MaxDim, spec.MaxDim, imaging.Lanczos)

	format, err := imaging.FormatFromFilename(outPath)
	if err != nil {
		format = imaging.JPEG
	}

	// Regenerate-then-publish: encode into a temp file in the destination
	// directory, then rename over the target so readers never observe a
	// partial write.
	tmp, err := os.CreateTemp(filepath.Dir(outPath), "."+filepath.Base(outPath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	var opts []imaging.EncodeOption
	if format == imaging.JPEG {
		opts = append(opts, imaging.JPEGQuality(jpegQuality))
	}

	if err := imaging.Encode(tmp, resized, format, opts...); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode %s: %w", filepath.Base(outPath), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, outPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish variant: %w", err)
	}
	return nil
}

// IsImageFilename reports whether a file name has a decodable image
// extension. Used by callers that scan directories for photo files.
func IsImageFilename(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}
