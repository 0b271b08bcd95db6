// Package photosync keeps a local photo folder, a cloud bucket, and a
// static gallery site in sync.
package photosync

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"

	"github.com/ceephoto/photohost/pkg/photohost"
	"github.com/ceephoto/photohost/pkg/photohost/variant"
)

// Entry is one photo's record in the site manifest.
type Entry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
}

// Manifest maps photo filename to its manifest entry.
type Manifest map[string]Entry

// Syncer diffs a local folder against the manifest and reconciles the
// object store, the manifest, and the generated index page.
type Syncer struct {
	store     photohost.BlobStore
	photosDir string
	metaFile  string
	indexFile string
}

// NewSyncer builds a syncer rooted at photosDir, writing site artifacts
// under siteDir.
func NewSyncer(store photohost.BlobStore, photosDir, siteDir string) *Syncer {
	return &Syncer{
		store:     store,
		photosDir: photosDir,
		metaFile:  filepath.Join(siteDir, "photos.json"),
		indexFile: filepath.Join(siteDir, "index.html"),
	}
}

type localFile struct {
	name string
	path string
	sha1 string
	size int64
}

// SyncOnce runs one reconcile cycle and reports whether anything changed.
func (s *Syncer) SyncOnce(ctx context.Context) (bool, error) {
	local, err := s.scanLocal()
	if err != nil {
		return false, fmt.Errorf("scan %s: %w", s.photosDir, err)
	}

	manifest, err := s.loadManifest()
	if err != nil {
		return false, err
	}

	changed := false

	// Upload new and modified files.
	for name, lf := range local {
		entry, known := manifest[name]
		if known && entry.SHA1 == lf.sha1 {
			continue
		}
		url, err := s.upload(ctx, lf)
		if err != nil {
			return changed, err
		}
		manifest[name] = Entry{Name: name, URL: url, SHA1: lf.sha1, Size: lf.size}
		slog.Info("uploaded photo", "name", name, "size", lf.size)
		changed = true
	}

	// Remove files that disappeared locally.
	for name := range manifest {
		if _, ok := local[name]; ok {
			continue
		}
		if err := s.store.Delete(ctx, name); err != nil {
			return changed, err
		}
		delete(manifest, name)
		slog.Info("removed photo", "name", name)
		changed = true
	}

	if changed {
		if err := s.saveManifest(manifest); err != nil {
			return true, err
		}
		if err := s.generateIndex(manifest); err != nil {
			return true, err
		}
	}
	return changed, nil
}

// scanLocal lists image files directly under the photos directory.
func (s *Syncer) scanLocal() (map[string]localFile, error) {
	result := make(map[string]localFile)

	err := godirwalk.Walk(s.photosDir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				if path != s.photosDir {
					return filepath.SkipDir
				}
				return nil
			}
			if !variant.IsImageFilename(path) {
				return nil
			}
			sum, size, err := fileSHA1(path)
			if err != nil {
				return err
			}
			name := filepath.Base(path)
			result[name] = localFile{name: name, path: path, sha1: sum, size: size}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Syncer) upload(ctx context.Context, lf localFile) (string, error) {
	f, err := os.Open(lf.path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return s.store.Put(ctx, lf.name, f, photohost.ContentTypeFor(lf.path))
}

// loadManifest reads the manifest, tolerating the legacy list layout by
// converting it to the map form.
func (s *Syncer) loadManifest() (Manifest, error) {
	data, err := os.ReadFile(s.metaFile)
	if os.IsNotExist(err) || (err == nil && len(data) == 0) {
		return Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err == nil {
		return m, nil
	}

	var list []Entry
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m = Manifest{}
	for _, e := range list {
		if e.Name != "" {
			m[e.Name] = e
		}
	}
	return m, nil
}

func (s *Syncer) saveManifest(m Manifest) error {
	if err := os.MkdirAll(filepath.Dir(s.metaFile), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.metaFile, data, 0o644)
}

// generateIndex rewrites the static gallery page from the manifest.
func (s *Syncer) generateIndex(m Manifest) error {
	var b strings.Builder
	b.WriteString("<!doctype html><html><head>\n")
	b.WriteString("<meta charset='utf-8'><title>Photo Gallery</title>\n")
	b.WriteString("<style>body{font-family:sans-serif} img{max-width:250px;margin:4px}</style>\n")
	b.WriteString("</head><body><h1>Photo Gallery</h1>\n")
	for _, name := range sortedNames(m) {
		e := m[name]
		fmt.Fprintf(&b, "<div><img src='%s' alt='%s'></div>\n",
			html.EscapeString(e.URL), html.EscapeString(e.Name))
	}
	b.WriteString("</body></html>\n")
	return os.WriteFile(s.indexFile, []byte(b.String()), 0o644)
}

// ManifestPaths returns the site files the syncer rewrites, for the git
// publish step.
func (s *Syncer) ManifestPaths() []string {
	return []string{s.metaFile, s.indexFile}
}

// sortedNames gives a stable page order regardless of map iteration.
func sortedNames(m Manifest) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// fileSHA1 streams a file through SHA-1, returning the digest and size.
func fileSHA1(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha1.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
